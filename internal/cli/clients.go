package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/database"
	"github.com/Mr-Dark-debug/paytrail/internal/server"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newClientsCmd() *cobra.Command {
	dbPath := envOr("PAYTRAIL_DB", server.DefaultConfig().DBPath)
	var (
		name   string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List clients known to the companion server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := database.ClientFilter{Limit: limit, Offset: offset}
			if name != "" {
				filter.Name = &name
			}
			return writeClientsTable(cmd.OutOrStdout(), store, filter, time.Now())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", dbPath, "Path to SQLite database file")
	cmd.Flags().StringVar(&name, "name", "", "Only the client with this name")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")
	return cmd
}

// writeClientsTable lists clients with the size and age of their timelines.
// Tokens are never printed.
func writeClientsTable(w io.Writer, store database.Store, filter database.ClientFilter, now time.Time) error {
	clients, err := store.QueryClients(filter)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		fmt.Fprintln(w, "No clients found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Client ID", "Events", "Last Event"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, c := range clients {
		stats, err := store.GetTimelineStats(c.ClientID)
		if err != nil {
			return err
		}
		last := "-"
		if stats.EventCount > 0 {
			last = timeutil.RelativeTime(time.Unix(0, stats.LastAt), now)
		}
		table.Append([]string{c.Name, c.ClientID, strconv.Itoa(stats.EventCount), last})
	}
	table.Render()
	return nil
}
