package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/codewith-ram/task-manager/config"
	"github.com/codewith-ram/task-manager/storage"
)

// backend is the persistence stack selected by the configuration.
type backend struct {
	adapter *storage.Adapter
	redis   *redis.Client
}

func (b *backend) Close() {
	if b.redis == nil {
		return
	}
	if err := b.redis.Close(); err != nil {
		log.WithError(err).Warn("redis close")
	}
}

func openBackend(ctx context.Context, cfg config.Config, logger *log.Logger) (*backend, error) {
	b := &backend{}
	if cfg.Redis != nil {
		b.redis = redis.NewClient(cfg.Redis)
	}

	var slot storage.Slot
	switch cfg.Slot {
	case config.SlotFile:
		slot = storage.NewFileSlot(cfg.DataDir)
	case config.SlotRedis:
		slot = storage.NewRedisSlot(b.redis, cfg.BoardName+":")
	case config.SlotTable:
		ts, err := storage.NewTableSlot(cfg.StorageConnectionString, cfg.BoardTable, cfg.BoardName)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("table slot: %w", err)
		}
		if err := ts.EnsureTable(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure table %s: %w", cfg.BoardTable, err)
		}
		slot = ts
	default:
		b.Close()
		return nil, fmt.Errorf("unknown slot %q", cfg.Slot)
	}

	if b.redis != nil && cfg.Slot != config.SlotRedis && cfg.CacheTTL > 0 {
		slot = storage.NewCache(slot, b.redis, cfg.CacheTTL, logger)
	}
	logger.WithFields(log.Fields{
		"slot":   cfg.Slot,
		"key":    cfg.StorageKey,
		"cached": b.redis != nil && cfg.Slot != config.SlotRedis && cfg.CacheTTL > 0,
	}).Debug("storage configured")

	b.adapter = storage.NewAdapter(slot, cfg.StorageKey, logger)
	return b, nil
}
