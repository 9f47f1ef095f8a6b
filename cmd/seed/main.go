package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/seed"
	"storefront/internal/storage"
)

func main() {
	var (
		filePath  string
		overwrite bool
	)
	flag.StringVar(&filePath, "file", "", "Seed YAML file (defaults to the embedded catalogue)")
	flag.BoolVar(&overwrite, "overwrite", false, "Replace stores that already exist")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("seed")
	defer func() { _ = logger.Sync() }()

	data, err := seed.Defaults()
	if filePath != "" {
		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			logger.Fatal("read seed file", zap.Error(readErr))
		}
		data, err = seed.Parse(raw)
	}
	if err != nil {
		logger.Fatal("load seed", zap.Error(err))
	}

	ctx := context.Background()
	repo, closeStorage, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer closeStorage()

	written, err := seed.Apply(ctx, repo, data, overwrite)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied", zap.Strings("keys", written), zap.String("storage", cfg.StorageBackend))
}
