package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/store"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := store.NewPostgresManager(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer manager.Close()

	if err := manager.RunMigrations(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "migrations applied")
}
