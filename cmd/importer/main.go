// Command importer reconciles an instructor workbook against the configured
// user directory once and prints the outcome as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/docentes-portal/backend/internal/config"
	"github.com/docentes-portal/backend/internal/database"
	"github.com/docentes-portal/backend/internal/reconcile"
	"github.com/docentes-portal/backend/internal/storage"
	"github.com/docentes-portal/backend/internal/users"
	"github.com/docentes-portal/backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	path := flag.String("file", cfg.Import.SourcePath, "workbook path")
	object := flag.String("object", cfg.Import.SourceObject, "MinIO object key (overrides -file)")
	archive := flag.Bool("archive", false, "archive the workbook to MinIO before reconciling")
	flag.Parse()
	logger.Init(cfg.Log.Level)

	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, time.Second)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warnf("failed to ensure user indexes: %v", err)
	}
	rec := reconcile.NewReconciler(repo)

	var src reconcile.Source = reconcile.FileSource{Path: *path}
	if *object != "" || *archive {
		store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Fatalf("MinIO unavailable: %v", err)
		}
		if *archive {
			rec.WithArchiver(store)
		}
		if *object != "" {
			src = reconcile.ObjectSource{Store: store, Key: *object}
		}
	}

	out, err := rec.Sync(ctx, src)
	if err != nil {
		logger.Fatalf("reconcile %s: %v", src, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalf("encode outcome: %v", err)
	}
}
