package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"drivefin/internal/backend"
	"drivefin/internal/cli"
	"drivefin/internal/services"
	"drivefin/internal/store"
)

var (
	flagProfile string
	flagBackend string
	flagSQLite  string
	flagJSON    bool
	flagVerbose bool
)

var timeNow = time.Now

var rootCmd = &cobra.Command{
	Use:           "drivefinctl",
	Short:         "Inspect and seed drivefin data",
	Long:          "Query goals and dashboard figures straight from drivefin storage, and load demo data.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", cli.ProfilePath(), "Profile file (TOML)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: memory, sqlite or postgres (overrides profile)")
	rootCmd.PersistentFlags().StringVar(&flagSQLite, "sqlite", "", "SQLite database path (overrides profile)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log backend activity to stderr")
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// env is what every data command works on: the opened backend and a store
// loaded from it.
type env struct {
	profile cli.Profile
	backend *backend.Result
	store   *store.Store
	now     time.Time
}

func (e *env) Close() error { return e.backend.Cleanup() }

// asJSON reports whether output should be JSON, from the flag or profile.
func (e *env) asJSON() bool {
	return flagJSON || e.profile.Output.Format == "json"
}

// open resolves the profile and flags, opens storage and loads every record
// into a fresh store.
func open(ctx context.Context) (*env, error) {
	profile, err := cli.LoadProfile(flagProfile)
	if err != nil {
		return nil, err
	}
	if flagBackend != "" {
		profile.Storage.Backend = flagBackend
	}
	if flagSQLite != "" {
		profile.Storage.SQLitePath = flagSQLite
	}
	cfg, err := profile.BackendConfig()
	if err != nil {
		return nil, err
	}

	logOut := io.Discard
	if flagVerbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	res, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := store.New(store.InitialState())
	ledger := services.NewLedger(res.Storage, st, services.WithLogger(logger))
	if err := ledger.Load(ctx); err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("load records: %w", err)
	}
	return &env{profile: profile, backend: res, store: st, now: timeNow()}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
