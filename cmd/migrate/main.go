package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/safetyfan/internal/adapters/postgres"
	"github.com/samirrijal/safetyfan/internal/pkg/config"
	"github.com/samirrijal/safetyfan/internal/pkg/logging"
)

// Files are applied in order on up and in reverse on down.
var (
	upFiles   = []string{"migrations/001_fans.sql"}
	downFiles = []string{"migrations/001_fans.down.sql"}
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("safetyfan-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 1)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var files []string
	switch os.Args[1] {
	case "up":
		files = upFiles
	case "down":
		files = downFiles
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err := apply(ctx, db, files); err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	slog.Info("migrations applied", "direction", os.Args[1], "files", len(files))
}

func apply(ctx context.Context, db *postgres.DB, files []string) error {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		slog.Info("applied", "file", f)
	}
	return nil
}
