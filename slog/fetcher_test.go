package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/mock"
	sitebotslog "github.com/ohmanagement/sitebot/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs one entry per page", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://oh-management.at/":             "<html><title>Start</title></html>",
			"https://oh-management.at/kontakt.html": "<html>Kontakt</html>",
		}
		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return pages[url], nil
			},
		}

		var buf bytes.Buffer
		fetcher := sitebotslog.NewLoggingFetcher(inner, debugLogger(&buf))
		for url, want := range pages {
			html, err := fetcher.Fetch(context.Background(), url)
			require.NoError(t, err)
			assert.Equal(t, want, html)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch url=https://oh-management.at/ bytes=33")
		assert.Contains(t, output, "url=https://oh-management.at/kontakt.html bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs upstream failure", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "", sitebot.Errorf(sitebot.EUPSTREAM, "HTTP 404 for %s", url)
			},
		}

		var buf bytes.Buffer
		fetcher := sitebotslog.NewLoggingFetcher(inner, debugLogger(&buf))
		_, err := fetcher.Fetch(context.Background(), "https://oh-management.at/alt.html")

		assert.Equal(t, sitebot.EUPSTREAM, sitebot.ErrorCode(err))
		assert.Contains(t, buf.String(), "bytes=0")
		assert.Contains(t, buf.String(), `err="sitebot error: code=upstream message=HTTP 404 for https://oh-management.at/alt.html"`)
	})

	t.Run("silent at info level", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html></html>", nil
			},
		}

		var buf bytes.Buffer
		fetcher := sitebotslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := fetcher.Fetch(context.Background(), "https://oh-management.at/")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("browser already gone")
	inner := &mock.Fetcher{
		CloseFn: func() error { return closeErr },
	}

	fetcher := sitebotslog.NewLoggingFetcher(inner, slog.New(slog.DiscardHandler))

	assert.ErrorIs(t, fetcher.Close(), closeErr)
}
