package viper_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Tests in this file set environment variables and therefore do not run
// in parallel.

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := viper.LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, sitebot.DefaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, "sitebot.yaml", `
site:
  name: Beispiel GmbH
  base_url: https://example.at
  pages: ["/", "/team.html"]
chat:
  provider: openai
  temperature: 0.2
schedule:
  window: 30m
`)

	cfg, err := viper.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "Beispiel GmbH", cfg.Site.Name)
	assert.Equal(t, []string{"/", "/team.html"}, cfg.Site.Pages)
	assert.Equal(t, sitebot.ProviderOpenAI, cfg.Chat.Provider)
	assert.InDelta(t, 0.2, cfg.Chat.Temperature, 1e-6)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.Window)
	assert.Equal(t, "info@oh-management.at", cfg.Site.ContactEmail)
	assert.Equal(t, 300, cfg.Chat.MaxTokens)
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := writeFile(t, "sitebot.json", `{"index": {"store": "sqlite", "path": "data/rag.db"}}`)

	cfg, err := viper.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, sitebot.IndexStoreSQLite, cfg.Index.Store)
	assert.Equal(t, "data/rag.db", cfg.Index.Path)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "sitebot.yaml", "server:\n  addr: \":9000\"\n")
	t.Setenv("SITEBOT_SERVER_ADDR", ":9100")
	t.Setenv("SITEBOT_INDEX_FETCH_TIMEOUT", "20s")
	t.Setenv("SITEBOT_CHAT_FALLBACK_THRESHOLD", "5")

	cfg, err := viper.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, 20*time.Second, cfg.Index.FetchTimeout)
	assert.Equal(t, 5, cfg.Chat.FallbackThreshold)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := viper.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "sitebot.yaml", "chat:\n  provider: llama\n")

		_, err := viper.LoadConfig(path)

		assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("SITEBOT_SCHEDULE_WINDOW", "soon")

		_, err := viper.LoadConfig("")

		assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
	})
}
