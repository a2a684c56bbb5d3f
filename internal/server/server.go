// Package server implements the paytrail companion API server. It serves
// each client's payment timeline from SQLite over HTTP, authenticating
// callers by bearer token.
//
// Routes:
//
//	GET  /clients/get-timeline   timeline of the authenticated client
//	POST /clients/timeline       append an event to that timeline
//	GET  /health                 liveness
//	GET  /metrics                Prometheus text metrics
//	GET  /api/metrics            JSON metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/Mr-Dark-debug/paytrail/internal/database"
	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"
)

// maxBodyBytes caps request bodies on write endpoints.
const maxBodyBytes = 64 * 1024

// Metrics tracks request counts and error rates.
type Metrics struct {
	TimelineRequests int64 `json:"timeline_requests"`
	EventsAppended   int64 `json:"events_appended"`
	AuthFailures     int64 `json:"auth_failures"`
	ErrorCount       int64 `json:"error_count"`
	Uptime           int64 `json:"uptime_seconds"`
}

// Config holds configuration for the companion server.
type Config struct {
	// ListenAddr is the TCP address to serve HTTP on.
	ListenAddr string `json:"listen_addr"`

	// DBPath is the path to the SQLite database file.
	DBPath string `json:"db_path"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DefaultConfig returns sensible defaults for the companion server.
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		ListenAddr:      "127.0.0.1:8787",
		DBPath:          filepath.Join(homeDir, ".paytrail", "paytrail.db"),
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves timelines from a database.Store.
type Server struct {
	config  Config
	store   database.Store
	metrics Metrics
	router  *mux.Router

	httpServer *http.Server
	mu         sync.Mutex
	wg         sync.WaitGroup
	started    time.Time
	done       chan struct{}
	stopOnce   sync.Once
}

// New builds a Server and its routes. Nothing listens until Start.
func New(config Config, store database.Store) *Server {
	s := &Server{
		config:  config,
		store:   store,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	clients := r.PathPrefix("/clients").Subrouter()
	clients.Use(s.authenticate)
	clients.HandleFunc("/get-timeline", s.handleGetTimeline).Methods(http.MethodGet)
	clients.HandleFunc("/timeline", s.handleAppendEvent).Methods(http.MethodPost)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handlePromMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics", s.handleJSONMetrics).Methods(http.MethodGet)

	return r
}

// Start begins serving in the background. It returns once the listener
// is bound so callers can report the address.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.ListenAddr, err)
	}

	s.mu.Lock()
	s.started = time.Now()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] HTTP server: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
			s.shutdown()
		case <-s.done:
		}
	}()

	log.Printf("[INFO] paytrail server listening on http://%s", ln.Addr())
	return nil
}

// Stop shuts the server down and waits for in-flight requests.
func (s *Server) Stop() error {
	log.Println("[INFO] Shutting down paytrail server...")
	s.stopOnce.Do(func() { close(s.done) })
	err := s.shutdown()
	s.wg.Wait()
	log.Println("[INFO] paytrail server stopped.")
	return err
}

func (s *Server) shutdown() error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Metrics returns a snapshot of the current metrics.
func (s *Server) Metrics() Metrics {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	return Metrics{
		TimelineRequests: atomic.LoadInt64(&s.metrics.TimelineRequests),
		EventsAppended:   atomic.LoadInt64(&s.metrics.EventsAppended),
		AuthFailures:     atomic.LoadInt64(&s.metrics.AuthFailures),
		ErrorCount:       atomic.LoadInt64(&s.metrics.ErrorCount),
		Uptime:           int64(time.Since(started).Seconds()),
	}
}

// ============================================================
// Authentication
// ============================================================

type ctxKey int

const clientKey ctxKey = iota

// authenticate resolves "Authorization: Bearer <token>" to a client and
// stores it on the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			atomic.AddInt64(&s.metrics.AuthFailures, 1)
			writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}

		client, err := s.store.ClientByToken(token)
		if errors.Is(err, database.ErrNotFound) {
			atomic.AddInt64(&s.metrics.AuthFailures, 1)
			writeJSON(w, http.StatusUnauthorized, errorBody("unknown token"))
			return
		}
		if err != nil {
			log.Printf("[ERROR] Resolving token: %v", err)
			atomic.AddInt64(&s.metrics.ErrorCount, 1)
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey, client)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

func clientFrom(ctx context.Context) *database.Client {
	c, _ := ctx.Value(clientKey).(*database.Client)
	return c
}

// ============================================================
// Handlers
// ============================================================

// handleGetTimeline answers with {success, timeline}. Timestamps are
// rendered as RFC 3339 in UTC.
func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&s.metrics.TimelineRequests, 1)
	client := clientFrom(r.Context())

	events, err := s.store.QueryTimeline(client.ClientID)
	if err != nil {
		log.Printf("[ERROR] Querying timeline for %s: %v", client.ClientID, err)
		atomic.AddInt64(&s.metrics.ErrorCount, 1)
		writeJSON(w, http.StatusInternalServerError, timeline.Response{Success: false})
		return
	}

	resp := timeline.Response{Success: true, Timeline: make([]timeline.Entry, 0, len(events))}
	for _, ev := range events {
		resp.Timeline = append(resp.Timeline, timeline.Entry{
			CreatedAt:   time.Unix(0, ev.CreatedAt).UTC().Format(time.RFC3339Nano),
			Title:       ev.Title,
			Description: ev.Description,
		})
	}

	log.Printf("[DEBUG] Served timeline client=%s entries=%d", client.ClientID, len(resp.Timeline))
	writeJSON(w, http.StatusOK, resp)
}

// appendRequest is the body of POST /clients/timeline.
type appendRequest struct {
	CreatedAt   string `json:"createdAt,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r.Context())

	var req appendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid body: %v", err)))
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}

	event := &database.TimelineEvent{
		ClientID:    client.ClientID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
	}
	if req.CreatedAt != "" {
		ts, err := timeutil.ParseISO(req.CreatedAt, time.UTC)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		event.CreatedAt = ts.UnixNano()
	}

	if err := s.store.InsertEvent(event); err != nil {
		log.Printf("[ERROR] Appending event for %s: %v", client.ClientID, err)
		atomic.AddInt64(&s.metrics.ErrorCount, 1)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	atomic.AddInt64(&s.metrics.EventsAppended, 1)

	entry := timeline.Entry{
		CreatedAt:   time.Unix(0, event.CreatedAt).UTC().Format(time.RFC3339Nano),
		Title:       event.Title,
		Description: event.Description,
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"event_id": event.EventID,
		"entry":    entry,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePromMetrics writes metrics in the Prometheus text format.
func (s *Server) handlePromMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.Metrics()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP paytrail_timeline_requests_total Timeline requests served\n")
	fmt.Fprintf(w, "# TYPE paytrail_timeline_requests_total counter\n")
	fmt.Fprintf(w, "paytrail_timeline_requests_total %d\n", m.TimelineRequests)
	fmt.Fprintf(w, "# HELP paytrail_events_appended_total Timeline events appended\n")
	fmt.Fprintf(w, "# TYPE paytrail_events_appended_total counter\n")
	fmt.Fprintf(w, "paytrail_events_appended_total %d\n", m.EventsAppended)
	fmt.Fprintf(w, "# HELP paytrail_auth_failures_total Rejected credentials\n")
	fmt.Fprintf(w, "# TYPE paytrail_auth_failures_total counter\n")
	fmt.Fprintf(w, "paytrail_auth_failures_total %d\n", m.AuthFailures)
	fmt.Fprintf(w, "# HELP paytrail_errors_total Internal errors\n")
	fmt.Fprintf(w, "# TYPE paytrail_errors_total counter\n")
	fmt.Fprintf(w, "paytrail_errors_total %d\n", m.ErrorCount)
	fmt.Fprintf(w, "# HELP paytrail_uptime_seconds Uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE paytrail_uptime_seconds gauge\n")
	fmt.Fprintf(w, "paytrail_uptime_seconds %d\n", m.Uptime)
}

func (s *Server) handleJSONMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Metrics())
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] Writing response: %v", err)
	}
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}
