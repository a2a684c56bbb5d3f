package cli

import (
	"fmt"
	"io"

	"github.com/Mr-Dark-debug/paytrail/internal/server"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"

	"github.com/spf13/cobra"
)

// metricsPath is served by the companion server next to the timeline.
const metricsPath = "api/metrics"

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show companion server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}

			var m server.Metrics
			if err := client.Get(cmd.Context(), metricsPath, &m); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠ paytrail server is not reachable.")
				fmt.Fprintln(cmd.ErrOrStderr(), "  Start it with: paytrail serve --seed")
				fmt.Fprintf(cmd.ErrOrStderr(), "  (tried: %s%s)\n", client.BaseURL(), metricsPath)
				return err
			}
			writeStatus(cmd.OutOrStdout(), client.BaseURL(), m)
			return nil
		},
	}
}

func writeStatus(w io.Writer, base string, m server.Metrics) {
	fmt.Fprintf(w, "✅ paytrail server is running at %s\n", base)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Timeline requests:  %d\n", m.TimelineRequests)
	fmt.Fprintf(w, "  Events appended:    %d\n", m.EventsAppended)
	fmt.Fprintf(w, "  Auth failures:      %d\n", m.AuthFailures)
	fmt.Fprintf(w, "  Errors:             %d\n", m.ErrorCount)
	fmt.Fprintf(w, "  Uptime:             %s\n", timeutil.FormatDuration(m.Uptime*1000))
}
