package mock

import (
	"context"

	"github.com/ohmanagement/sitebot"
)

var _ sitebot.SessionStore = (*SessionStore)(nil)

// SessionStore is a mock implementation of sitebot.SessionStore.
type SessionStore struct {
	GetFn   func(ctx context.Context, key string) (string, bool, error)
	SetFn   func(ctx context.Context, key, value string) error
	ClearFn func(ctx context.Context) error
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.GetFn(ctx, key)
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	return s.SetFn(ctx, key, value)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.ClearFn(ctx)
}
