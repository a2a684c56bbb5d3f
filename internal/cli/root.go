// Package cli wires paytrail's commands: the interactive payment status
// screen, scriptable timeline output and the companion server.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/api"
	"github.com/Mr-Dark-debug/paytrail/internal/tui"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// App holds the settings shared by all commands.
type App struct {
	APIURL  string
	Token   string
	Timeout time.Duration
	Locale  string
	LogFile string
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	defaults := api.DefaultConfig()

	cmd := &cobra.Command{
		Use:          "paytrail",
		Short:        "Payment status timeline in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the payment status screen
  paytrail --token $PAYTRAIL_TOKEN

  # Print the timeline as a table
  paytrail timeline

  # Run a local companion server with demo data
  paytrail serve --seed
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("PAYTRAIL_API_URL", defaults.BaseURL), "Base URL of the payments API")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("PAYTRAIL_TOKEN", ""), "Bearer token for the payments API")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", envDuration("PAYTRAIL_TIMEOUT", defaults.Timeout), "Request timeout")
	cmd.PersistentFlags().StringVar(&app.Locale, "locale", envOr("PAYTRAIL_LOCALE", ""), "Locale for dates, e.g. en-US (default: host locale)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("PAYTRAIL_LOG", defaultLogFile()), "Log file for the interactive screen")

	cmd.AddCommand(newTimelineCmd(app))
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newClientsCmd())
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// runTUI opens the payment status screen. Logging goes to a file so the
// alternate screen stays clean.
func runTUI(app *App) error {
	if err := os.MkdirAll(filepath.Dir(app.LogFile), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := tea.LogToFile(app.LogFile, "paytrail")
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", app.LogFile, err)
	}
	defer logFile.Close()

	client, err := app.client()
	if err != nil {
		return err
	}

	model := tui.NewModel(client, tui.Options{Formatter: app.formatter()})
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if m, ok := final.(tui.Model); ok {
		m.Teardown()
	}
	if err != nil {
		return fmt.Errorf("running payment status screen: %w", err)
	}
	return nil
}

func (app *App) client() (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL: app.APIURL,
		Token:   app.Token,
		Timeout: app.Timeout,
	})
}

// formatter formats dates in the configured locale, or the host's, and
// the host time zone.
func (app *App) formatter() *timeutil.Formatter {
	locale := app.Locale
	if locale == "" {
		locale = timeutil.HostLocale()
	}
	return timeutil.NewFormatter(locale, time.Local)
}

func defaultLogFile() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".paytrail", "paytrail.log")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envDuration reads a duration such as "15s" from k. Unparseable values
// fall back to d.
func envDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return parsed
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paytrail v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}
}
