package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ohmanagement/sitebot"
)

// Ensure LoggingIndexStore implements sitebot.IndexStore.
var _ sitebot.IndexStore = (*LoggingIndexStore)(nil)

// LoggingIndexStore wraps an IndexStore with logging.
type LoggingIndexStore struct {
	next   sitebot.IndexStore
	logger *slog.Logger
}

// NewLoggingIndexStore creates a new LoggingIndexStore.
func NewLoggingIndexStore(next sitebot.IndexStore, logger *slog.Logger) *LoggingIndexStore {
	return &LoggingIndexStore{next: next, logger: logger}
}

// ReplaceIndex delegates to the wrapped store and logs the operation.
func (s *LoggingIndexStore) ReplaceIndex(ctx context.Context, chunks []*sitebot.Chunk) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("replace index",
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReplaceIndex(ctx, chunks)
}

// LoadIndex delegates to the wrapped store and logs the operation.
func (s *LoggingIndexStore) LoadIndex(ctx context.Context) (chunks []*sitebot.Chunk, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("load index",
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadIndex(ctx)
}
