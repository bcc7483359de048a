package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ohmanagement/sitebot"
	main "github.com/ohmanagement/sitebot/cmd/sitebot"
	"github.com/ohmanagement/sitebot/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshCmd_Run(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 2, 2, 15, 0, 0, time.UTC)

	t.Run("prints skip message", func(t *testing.T) {
		t.Parallel()

		var gotManual bool
		refresher := &mock.Refresher{
			RefreshFn: func(_ context.Context, manual bool) (*sitebot.RefreshResult, error) {
				gotManual = manual
				return &sitebot.RefreshResult{
					Skipped:   true,
					Message:   "Scheduled refresh skipped - not the right time",
					Timestamp: ts,
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Refresher: refresher,
		}

		err := (&main.RefreshCmd{}).Run(deps)

		require.NoError(t, err)
		assert.False(t, gotManual)
		assert.Equal(t, "Scheduled refresh skipped - not the right time (2026-03-02T02:15:00Z)\n", stdout.String())
	})

	t.Run("passes manual flag and prints build summary", func(t *testing.T) {
		t.Parallel()

		var gotManual bool
		refresher := &mock.Refresher{
			RefreshFn: func(_ context.Context, manual bool) (*sitebot.RefreshResult, error) {
				gotManual = manual
				return &sitebot.RefreshResult{
					Message:   "RAG index refreshed successfully",
					Timestamp: ts,
					Build:     &sitebot.BuildResult{Pages: 8, Chunks: 20, Bytes: 100},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Refresher: refresher,
		}

		err := (&main.RefreshCmd{Manual: true}).Run(deps)

		require.NoError(t, err)
		assert.True(t, gotManual)
		assert.Contains(t, stdout.String(), "RAG index refreshed successfully")
		assert.Contains(t, stdout.String(), "Indexed 8 pages (0 skipped)")
	})

	t.Run("reports refresh failure", func(t *testing.T) {
		t.Parallel()

		refresher := &mock.Refresher{
			RefreshFn: func(_ context.Context, _ bool) (*sitebot.RefreshResult, error) {
				return nil, sitebot.Errorf(sitebot.ENOTFOUND, "build command not found: build-index")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    &bytes.Buffer{},
			Stderr:    stderr,
			Refresher: refresher,
		}

		err := (&main.RefreshCmd{Manual: true}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: build command not found: build-index")
	})
}
