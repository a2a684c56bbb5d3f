// Package database provides the storage layer for the paytrail
// companion server.
//
// It implements the Store interface using SQLite in WAL mode. Clients
// authenticate with an API token; each client owns an append-only list
// of payment timeline events. The DBService struct is the primary entry
// point for all database operations.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store defines the interface for timeline persistence.
type Store interface {
	// UpsertClient creates a client or updates its name and token.
	UpsertClient(client *Client) error
	// ClientByToken resolves an API token to its client.
	ClientByToken(token string) (*Client, error)
	// QueryClients returns clients matching the filter, ordered by name.
	QueryClients(filter ClientFilter) ([]*Client, error)

	// InsertEvent appends one event to a client's timeline.
	InsertEvent(event *TimelineEvent) error
	// BatchInsertEvents appends several events in a single transaction.
	BatchInsertEvents(events []*TimelineEvent) error
	// QueryTimeline returns a client's events in chronological order.
	QueryTimeline(clientID string) ([]*TimelineEvent, error)
	// GetTimelineStats returns aggregated statistics for a client.
	GetTimelineStats(clientID string) (*TimelineStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Client is an API consumer whose payment timeline the server holds.
type Client struct {
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	APIToken  string `json:"-"`
	CreatedAt int64  `json:"created_at"`
}

// TimelineEvent is one stored payment status event.
type TimelineEvent struct {
	Seq         int64  `json:"seq"`
	EventID     string `json:"event_id"`
	ClientID    string `json:"client_id"`
	CreatedAt   int64  `json:"created_at"` // Unix nanoseconds
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ClientFilter defines query parameters for client listing.
type ClientFilter struct {
	Name   *string `json:"name,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// TimelineStats holds aggregated statistics for one client's timeline.
type TimelineStats struct {
	ClientID   string `json:"client_id"`
	EventCount int    `json:"event_count"`
	FirstAt    int64  `json:"first_at"`
	LastAt     int64  `json:"last_at"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It manages the connection, prepared statements, and guards access
// with a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtUpsertClient *sql.Stmt
	stmtInsertEvent  *sql.Stmt
}

// NewDBService opens the database, initializes the schema and prepares
// frequently-used statements.
//
// Use ":memory:" for an in-memory database (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps ":memory:" databases from being per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtUpsertClient, err = s.db.Prepare(`
		INSERT INTO clients (client_id, name, api_token, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			api_token = excluded.api_token
	`)
	if err != nil {
		return fmt.Errorf("preparing UpsertClient: %w", err)
	}

	s.stmtInsertEvent, err = s.db.Prepare(`
		INSERT INTO timeline_events (event_id, client_id, created_at, title, description)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertEvent: %w", err)
	}

	return nil
}

// UpsertClient creates a client or updates its name and token.
// A missing ClientID or CreatedAt is filled in.
func (s *DBService) UpsertClient(client *Client) error {
	if client.APIToken == "" {
		return fmt.Errorf("client %q: api token is required", client.Name)
	}
	if client.ClientID == "" {
		client.ClientID = uuid.NewString()
	}
	if client.CreatedAt == 0 {
		client.CreatedAt = time.Now().UnixNano()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stmtUpsertClient.Exec(client.ClientID, client.Name, client.APIToken, client.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting client %s: %w", client.ClientID, err)
	}
	return nil
}

// ClientByToken resolves an API token. It returns ErrNotFound for an
// unknown token.
func (s *DBService) ClientByToken(token string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Client{}
	err := s.db.QueryRow(`
		SELECT client_id, name, api_token, created_at
		FROM clients WHERE api_token = ?
	`, token).Scan(&c.ClientID, &c.Name, &c.APIToken, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up client by token: %w", err)
	}
	return c, nil
}

// QueryClients returns clients matching the filter, ordered by name.
func (s *DBService) QueryClients(filter ClientFilter) ([]*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT client_id, name, api_token, created_at FROM clients WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Name != nil {
		query += ` AND name = ?`
		args = append(args, *filter.Name)
	}

	query += ` ORDER BY name ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c := &Client{}
		if err := rows.Scan(&c.ClientID, &c.Name, &c.APIToken, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning client row: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// InsertEvent appends one event. A missing EventID or CreatedAt is
// filled in; Seq is set from the assigned row id.
func (s *DBService) InsertEvent(event *TimelineEvent) error {
	fillEventDefaults(event)

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtInsertEvent.Exec(
		event.EventID, event.ClientID, event.CreatedAt,
		event.Title, event.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", event.EventID, err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		event.Seq = seq
	}
	return nil
}

// BatchInsertEvents appends several events within a single transaction.
func (s *DBService) BatchInsertEvents(events []*TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch event transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := tx.Stmt(s.stmtInsertEvent)
	for _, event := range events {
		fillEventDefaults(event)
		res, err := stmt.Exec(
			event.EventID, event.ClientID, event.CreatedAt,
			event.Title, event.Description,
		)
		if err != nil {
			return fmt.Errorf("batch inserting event %s: %w", event.EventID, err)
		}
		if seq, err := res.LastInsertId(); err == nil {
			event.Seq = seq
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch event transaction: %w", err)
	}
	return nil
}

// QueryTimeline returns all events for a client ordered by created_at,
// ties broken by insertion order. This backs GET clients/get-timeline.
func (s *DBService) QueryTimeline(clientID string) ([]*TimelineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT seq, event_id, client_id, created_at, title, description
		FROM timeline_events
		WHERE client_id = ?
		ORDER BY created_at ASC, seq ASC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("querying timeline for client %s: %w", clientID, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetTimelineStats returns aggregated statistics for a client.
func (s *DBService) GetTimelineStats(clientID string) (*TimelineStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &TimelineStats{ClientID: clientID}
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(MIN(created_at), 0),
			COALESCE(MAX(created_at), 0)
		FROM timeline_events
		WHERE client_id = ?
	`, clientID).Scan(&stats.EventCount, &stats.FirstAt, &stats.LastAt)
	if err != nil {
		return nil, fmt.Errorf("querying timeline stats for %s: %w", clientID, err)
	}
	return stats, nil
}

// Close closes the prepared statements and the underlying connection.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.stmtUpsertClient, s.stmtInsertEvent} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Helpers
// ============================================================

func fillEventDefaults(event *TimelineEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().UnixNano()
	}
}

func scanEvents(rows *sql.Rows) ([]*TimelineEvent, error) {
	var events []*TimelineEvent
	for rows.Next() {
		ev := &TimelineEvent{}
		if err := rows.Scan(
			&ev.Seq, &ev.EventID, &ev.ClientID, &ev.CreatedAt,
			&ev.Title, &ev.Description,
		); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
