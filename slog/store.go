package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/portdex/portdex"
)

// Ensure LoggingCacheStore implements portdex.CacheStore at compile time.
var _ portdex.CacheStore = (*LoggingCacheStore)(nil)

// LoggingCacheStore wraps a CacheStore with logging.
type LoggingCacheStore struct {
	next   portdex.CacheStore
	logger *slog.Logger
}

// NewLoggingCacheStore creates a new LoggingCacheStore.
func NewLoggingCacheStore(next portdex.CacheStore, logger *slog.Logger) *LoggingCacheStore {
	return &LoggingCacheStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the outcome.
func (s *LoggingCacheStore) Load(ctx context.Context) (registry *portdex.PortRegistry, err error) {
	defer func(begin time.Time) {
		size := 0
		if registry != nil {
			size = registry.Len()
		}
		s.logger.Debug("cache load",
			"assignments", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Save delegates to the wrapped store and logs the outcome.
func (s *LoggingCacheStore) Save(ctx context.Context, registry *portdex.PortRegistry) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("cache save",
			"assignments", registry.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, registry)
}
