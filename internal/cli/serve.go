package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/database"
	"github.com/Mr-Dark-debug/paytrail/internal/server"

	"github.com/spf13/cobra"
)

const (
	defaultSeedName  = "demo"
	defaultSeedToken = "demo-token"
)

type seedOptions struct {
	name  string
	token string
}

func (o *seedOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.name, "client", defaultSeedName, "Name of the seeded client")
	cmd.Flags().StringVar(&o.token, "seed-token", envOr("PAYTRAIL_TOKEN", defaultSeedToken), "API token of the seeded client")
}

func newServeCmd() *cobra.Command {
	cfg := server.DefaultConfig()
	var (
		seed bool
		opts seedOptions
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion timeline server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if seed {
				if err := runSeed(cmd, store, opts); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, store)
			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("starting server: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  PAYTRAIL SERVER")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Listen:   http://%s\n", cfg.ListenAddr)
			fmt.Fprintf(out, "  DB:       %s\n", cfg.DBPath)
			fmt.Fprintf(out, "  Timeline: http://%s/clients/get-timeline\n", cfg.ListenAddr)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Press Ctrl+C to stop.")
			fmt.Fprintln(out)

			<-ctx.Done()
			fmt.Fprintln(out, "\n  Shutting down gracefully...")
			if err := srv.Stop(); err != nil {
				return err
			}
			fmt.Fprintln(out, "  Done.")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.ListenAddr, "listen", envOr("PAYTRAIL_LISTEN", cfg.ListenAddr), "HTTP listen address")
	cmd.Flags().StringVar(&cfg.DBPath, "db", envOr("PAYTRAIL_DB", cfg.DBPath), "Path to SQLite database file")
	cmd.Flags().BoolVar(&seed, "seed", false, "Load a demo payment timeline before serving")
	opts.register(cmd)
	return cmd
}

func newSeedCmd() *cobra.Command {
	dbPath := server.DefaultConfig().DBPath
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo payment timeline into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return runSeed(cmd, store, opts)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOr("PAYTRAIL_DB", dbPath), "Path to SQLite database file")
	opts.register(cmd)
	return cmd
}

func runSeed(cmd *cobra.Command, store database.Store, opts seedOptions) error {
	client, n, err := server.Seed(store, opts.name, opts.token, time.Now())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Client %q already has a timeline; nothing seeded.\n", client.Name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d events for client %q (%s).\n", n, client.Name, client.ClientID)
	return nil
}

// openStore opens the database, creating its directory first.
func openStore(path string) (*database.DBService, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	store, err := database.NewDBService(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}
