// Package main provides a tool to seed the database with the starter tip
// catalogue.
//
// Usage:
//
//	DATA_PATH=~/.swasti go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/swastiapp/swasti-server/internal/config"
	"github.com/swastiapp/swasti-server/internal/seed"
	"github.com/swastiapp/swasti-server/internal/store/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	fmt.Printf("Opening database at: %s\n", cfg.DatabasePath())

	st, err := sqlite.Open(cfg.DatabasePath(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := seed.Run(context.Background(), st, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done")
}
