package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-gin-commerce/internal/app/api"
	"github.com/Apurer/go-gin-commerce/internal/app/stores"
	cartapp "github.com/Apurer/go-gin-commerce/internal/domains/cart/application"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; cannot purge carts")
	}
	st, cleanup, err := stores.Build(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}
	defer cleanup()

	cutoff := time.Now().Add(-cfg.CartTTL)
	removed, err := cartapp.NewService(st.Carts, st.Catalog).PurgeAnonymous(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge carts: %v", err)
	}
	logger.Info("cart purge completed", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
}
