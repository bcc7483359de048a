package sitebot_test

import (
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := sitebot.DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Site.Pages, 8)
	assert.Equal(t, 1000, cfg.Index.MaxChunkLength)
	assert.Equal(t, "0 2 * * 1", cfg.Schedule.Cron)
	assert.Equal(t, 10, cfg.Chat.HistoryLimit)
	assert.Equal(t, 3, cfg.Chat.FallbackThreshold)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *sitebot.Config)
	}{
		{"empty site name", func(c *sitebot.Config) { c.Site.Name = " " }},
		{"relative base url", func(c *sitebot.Config) { c.Site.BaseURL = "oh-management.at" }},
		{"no pages", func(c *sitebot.Config) { c.Site.Pages = nil }},
		{"page without slash", func(c *sitebot.Config) { c.Site.Pages = []string{"kontakt.html"} }},
		{"missing contact email", func(c *sitebot.Config) { c.Site.ContactEmail = "" }},
		{"unknown index store", func(c *sitebot.Config) { c.Index.Store = "postgres" }},
		{"missing index path", func(c *sitebot.Config) { c.Index.Path = "" }},
		{"unknown fetcher", func(c *sitebot.Config) { c.Index.Fetcher = "curl" }},
		{"unknown extractor", func(c *sitebot.Config) { c.Index.Extractor = "magic" }},
		{"zero dimensions", func(c *sitebot.Config) { c.Index.Dimensions = 0 }},
		{"zero rate", func(c *sitebot.Config) { c.Index.RequestsPerSecond = 0 }},
		{"zero build timeout", func(c *sitebot.Config) { c.Index.BuildTimeout = 0 }},
		{"missing cron", func(c *sitebot.Config) { c.Schedule.Cron = "" }},
		{"zero window", func(c *sitebot.Config) { c.Schedule.Window = 0 }},
		{"unknown provider", func(c *sitebot.Config) { c.Chat.Provider = "llama" }},
		{"zero max tokens", func(c *sitebot.Config) { c.Chat.MaxTokens = 0 }},
		{"zero history limit", func(c *sitebot.Config) { c.Chat.HistoryLimit = 0 }},
		{"zero threshold", func(c *sitebot.Config) { c.Chat.FallbackThreshold = 0 }},
		{"unknown session store", func(c *sitebot.Config) { c.Session.Store = "cookie" }},
		{"fs without directory", func(c *sitebot.Config) {
			c.Session.Store = sitebot.SessionStoreFS
			c.Session.Dir = ""
		}},
		{"redis without address", func(c *sitebot.Config) { c.Session.Store = sitebot.SessionStoreRedis }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := sitebot.DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Equal(t, sitebot.EINVALID, sitebot.ErrorCode(err))
		})
	}
}

func TestChatConfig_ModelName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gemini-2.5-flash", sitebot.ChatConfig{Provider: sitebot.ProviderGemini}.ModelName())
	assert.Equal(t, "gpt-4o-mini", sitebot.ChatConfig{Provider: sitebot.ProviderOpenAI}.ModelName())
	assert.Equal(t, "custom", sitebot.ChatConfig{Provider: sitebot.ProviderOpenAI, Model: "custom"}.ModelName())
}

func TestSiteConfig_PageURL(t *testing.T) {
	t.Parallel()

	site := sitebot.SiteConfig{BaseURL: "https://oh-management.at/"}

	assert.Equal(t, "https://oh-management.at/", site.PageURL("/"))
	assert.Equal(t, "https://oh-management.at/kontakt.html", site.PageURL("/kontakt.html"))
}
