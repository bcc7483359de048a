// Package viper loads sitebot.Config from an optional file and the
// environment using spf13/viper.
package viper

import (
	"strings"

	"github.com/ohmanagement/sitebot"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SITEBOT_CHAT_PROVIDER.
const EnvPrefix = "SITEBOT"

// LoadConfig reads the configuration. Values come from, in increasing
// precedence: sitebot.DefaultConfig, the file at path when path is not
// empty, and SITEBOT_* environment variables. The result is validated.
func LoadConfig(path string) (sitebot.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, sitebot.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return sitebot.Config{}, sitebot.Errorf(sitebot.EINVALID, "read config %s: %v", path, err)
		}
	}

	var cfg sitebot.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return sitebot.Config{}, sitebot.Errorf(sitebot.EINVALID, "decode config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return sitebot.Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides apply
// even when no file sets them.
func setDefaults(v *viper.Viper, d sitebot.Config) {
	v.SetDefault("site.name", d.Site.Name)
	v.SetDefault("site.base_url", d.Site.BaseURL)
	v.SetDefault("site.pages", d.Site.Pages)
	v.SetDefault("site.contact_email", d.Site.ContactEmail)
	v.SetDefault("site.contact_form_url", d.Site.ContactFormURL)
	v.SetDefault("site.business_hours", d.Site.BusinessHours)
	v.SetDefault("site.welcome", d.Site.Welcome)
	v.SetDefault("site.quick_replies", d.Site.QuickReplies)

	v.SetDefault("index.store", d.Index.Store)
	v.SetDefault("index.path", d.Index.Path)
	v.SetDefault("index.fetcher", d.Index.Fetcher)
	v.SetDefault("index.extractor", d.Index.Extractor)
	v.SetDefault("index.max_chunk_length", d.Index.MaxChunkLength)
	v.SetDefault("index.min_text_length", d.Index.MinTextLength)
	v.SetDefault("index.dimensions", d.Index.Dimensions)
	v.SetDefault("index.requests_per_second", d.Index.RequestsPerSecond)
	v.SetDefault("index.fetch_timeout", d.Index.FetchTimeout)
	v.SetDefault("index.build_timeout", d.Index.BuildTimeout)
	v.SetDefault("index.build_command", d.Index.BuildCommand)

	v.SetDefault("schedule.cron", d.Schedule.Cron)
	v.SetDefault("schedule.window", d.Schedule.Window)

	v.SetDefault("chat.provider", d.Chat.Provider)
	v.SetDefault("chat.model", d.Chat.Model)
	v.SetDefault("chat.max_tokens", d.Chat.MaxTokens)
	v.SetDefault("chat.temperature", d.Chat.Temperature)
	v.SetDefault("chat.history_limit", d.Chat.HistoryLimit)
	v.SetDefault("chat.fallback_threshold", d.Chat.FallbackThreshold)

	v.SetDefault("session.store", d.Session.Store)
	v.SetDefault("session.dir", d.Session.Dir)
	v.SetDefault("session.redis_addr", d.Session.RedisAddr)
	v.SetDefault("session.ttl", d.Session.TTL)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}
