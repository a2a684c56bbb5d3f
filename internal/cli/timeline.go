package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the payment timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}

			resp, err := client.FetchTimeline(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching timeline: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			writeTimelineTable(cmd.OutOrStdout(), resp, app.formatter(), time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw API response")
	return cmd
}

// writeTimelineTable renders entries oldest first, the way the screen
// lists them.
func writeTimelineTable(w io.Writer, resp *timeline.Response, f *timeutil.Formatter, now time.Time) {
	if !resp.HasEntries() {
		fmt.Fprintln(w, "No timeline data found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "When", "Title", "Description"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, e := range resp.Timeline {
		when := ""
		if t, err := timeutil.ParseISO(e.CreatedAt, f.Zone()); err == nil {
			when = timeutil.RelativeTime(t, now)
		}
		table.Append([]string{f.Format(e.CreatedAt), when, e.Title, e.Description})
	}
	table.Render()
}
