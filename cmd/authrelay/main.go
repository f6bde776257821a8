package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caasmo/authrelay"
	"github.com/caasmo/authrelay/db/zombiezen"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (empty runs built-in defaults)")
	dbFile := flag.String("db", "", "path to sqlite database file (overrides config)")
	flag.Parse()

	if err := run(*configPath, *dbFile); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, dbFile string) error {
	if dbFile == "" {
		dbFile = "authrelay.db"
	}

	pool, err := zombiezen.NewPool(dbFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer pool.Close()

	store, err := zombiezen.New(pool)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := store.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, srv, err := authrelay.New(configPath,
		authrelay.WithZombiezenPool(pool),
		authrelay.WithRouterHttprouter(),
		authrelay.WithCacheRistretto(),
		authrelay.WithPhusLogger(nil),
		authrelay.WithOAuth2FromConfig(),
		authrelay.WithGeminiGenerator(),
		authrelay.WithMetricsFromConfig(),
	)
	if err != nil {
		return err
	}

	app.Logger().Info("starting authrelay", "db", dbFile, "config", configPath)
	srv.Run()
	return nil
}
