package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/repository/snapshot"
	"storefront/internal/seed"
	"storefront/internal/service/catalog"
	"storefront/internal/storage"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product or category CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("importer")
	defer func() { _ = logger.Sync() }()

	raw, err := os.ReadFile(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	kind, err := importer.DetectKind(bytes.NewReader(raw))
	if err != nil {
		logger.Fatal("detect file kind", zap.Error(err))
	}

	ctx := context.Background()
	repo, closeStorage, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStorage()

	defaults, err := seed.Defaults()
	if err != nil {
		logger.Fatal("load defaults", zap.Error(err))
	}
	svc := catalog.New(ctx, snapshot.NewAdapter(repo, logger), catalog.Defaults{
		Products:   defaults.Products,
		Categories: defaults.Categories,
	}, logger)

	imp := importer.NewCSVImporter(bytes.NewReader(raw), svc, svc)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", count))
	}

	fmt.Printf("Imported %d %s in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}
