// Package kvstore provides the persisted namespaced key-value stores used for
// lifecycle anchors, the discovered forum and the last-good quote mirror.
// Values are JSON documents.
package kvstore

import (
	"context"
	"fmt"

	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/database"
	"github.com/wonny/memestock/pkg/logger"
	"github.com/wonny/memestock/pkg/redis"
)

// Open builds the store selected by cfg.Store.Backend
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (contracts.KVStore, error) {
	log = log.WithComponent("kvstore").WithField("backend", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Warn("In-memory store: lifecycle anchors will not survive restarts")
		return NewMemory(), nil

	case config.StorePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := NewPostgres(db)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		log.Info("Postgres store ready")
		return store, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Redis store ready")
		return NewRedis(client), nil

	case config.StoreSQLite:
		store, err := NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.Store.SQLitePath).Info("SQLite store ready")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
