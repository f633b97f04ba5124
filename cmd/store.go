package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/macrodash/macrodash/internal/basket"
	"github.com/macrodash/macrodash/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "macrodash.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadCatalog returns the compiled-in basket unless a file override is
// configured.
func loadCatalog() (*basket.Catalog, error) {
	if cfg.Basket.File != "" {
		return basket.LoadFile(cfg.Basket.File)
	}
	return basket.Default(), nil
}
