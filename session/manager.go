// Package session keeps the client's conversation history and fallback
// count on top of a sitebot.SessionStore.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/memory"
)

// Manager reads and writes session state through a store. When the store
// fails, the manager logs once and keeps the session in memory for the
// rest of its life. Unreadable persisted values read as empty.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    sitebot.SessionStore
	limit    int
	logger   *slog.Logger
	degraded bool

	// last known state, carried over when degrading
	history []sitebot.Turn
	count   int
}

// NewManager returns a Manager keeping at most limit turns. A
// non-positive limit selects sitebot.DefaultHistoryLimit.
func NewManager(store sitebot.SessionStore, limit int, logger *slog.Logger) *Manager {
	if limit <= 0 {
		limit = sitebot.DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if store == nil {
		store = memory.NewSessionStore(nil)
	}
	return &Manager{store: store, limit: limit, logger: logger}
}

// Degraded reports whether the manager fell back to memory.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// Load returns the stored turns, oldest first.
func (m *Manager) Load(ctx context.Context) []sitebot.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sitebot.Turn(nil), m.load(ctx)...)
}

// Append adds turn and drops the oldest turns beyond the limit.
func (m *Manager) Append(ctx context.Context, turn sitebot.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.load(ctx), turn)
	history = append([]sitebot.Turn(nil), sitebot.Tail(history, m.limit)...)
	m.history = history

	data, err := json.Marshal(history)
	if err != nil {
		m.logger.Error("encode history", "err", err)
		return
	}
	m.set(ctx, sitebot.SessionHistoryKey, string(data))
}

// FallbackCount returns the number of consecutive failed replies.
func (m *Manager) FallbackCount(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCount(ctx)
}

// IncrementFallback adds one failure and returns the new count.
func (m *Manager) IncrementFallback(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count = m.loadCount(ctx) + 1
	m.set(ctx, sitebot.SessionFallbackKey, strconv.Itoa(m.count))
	return m.count
}

// ResetFallback sets the failure count to zero.
func (m *Manager) ResetFallback(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count = 0
	m.set(ctx, sitebot.SessionFallbackKey, "0")
}

// Clear removes the history and the failure count.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history, m.count = nil, 0
	if err := m.store.Clear(ctx); err != nil {
		m.degrade(err)
	}
}

func (m *Manager) load(ctx context.Context) []sitebot.Turn {
	v, ok := m.get(ctx, sitebot.SessionHistoryKey)
	if !ok {
		m.history = nil
		return nil
	}
	var history []sitebot.Turn
	if err := json.Unmarshal([]byte(v), &history); err != nil {
		m.logger.Debug("discard unreadable history", "err", err)
		history = nil
	}
	m.history = history
	return history
}

func (m *Manager) loadCount(ctx context.Context) int {
	v, ok := m.get(ctx, sitebot.SessionFallbackKey)
	if !ok {
		m.count = 0
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		n = 0
	}
	m.count = n
	return n
}

func (m *Manager) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.degrade(err)
		v, ok, _ = m.store.Get(ctx, key)
	}
	return v, ok
}

func (m *Manager) set(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.degrade(err)
		_ = m.store.Set(ctx, key, value)
	}
}

// degrade swaps the store for a memory store seeded with the last known
// state.
func (m *Manager) degrade(err error) {
	if m.degraded {
		return
	}
	m.logger.Warn("session store failed, keeping session in memory", "err", err)

	entries := map[string]string{sitebot.SessionFallbackKey: strconv.Itoa(m.count)}
	if len(m.history) > 0 {
		if data, err := json.Marshal(m.history); err == nil {
			entries[sitebot.SessionHistoryKey] = string(data)
		}
	}
	m.store = memory.NewSessionStore(entries)
	m.degraded = true
}
