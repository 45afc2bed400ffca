package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/config"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

var errDatabaseURLRequired = errors.New("DATABASE_URL is required for the postgres store")

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errDatabaseURLRequired
		}
		sqlStore, err := store.OpenSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlStore, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
