package sitebot

import (
	"net/url"
	"strings"
	"time"
)

// Extractor names.
const (
	ExtractorRegex       = "regex"
	ExtractorReadability = "readability"
	ExtractorTrafilatura = "trafilatura"
)

// Fetcher names.
const (
	FetcherHTTP = "http"
	FetcherRod  = "rod"
)

// Index store names.
const (
	IndexStoreJSON   = "json"
	IndexStoreSQLite = "sqlite"
)

// Chat provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Session store names.
const (
	SessionStoreMemory = "memory"
	SessionStoreFS     = "fs"
	SessionStoreRedis  = "redis"
)

// Config is the immutable runtime configuration. It is built once at
// startup and passed explicitly to every component.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Index    IndexConfig    `mapstructure:"index"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Session  SessionConfig  `mapstructure:"session"`
	Server   ServerConfig   `mapstructure:"server"`
}

// SiteConfig describes the website and its contact channels.
type SiteConfig struct {
	Name           string   `mapstructure:"name"`
	BaseURL        string   `mapstructure:"base_url"`
	Pages          []string `mapstructure:"pages"`
	ContactEmail   string   `mapstructure:"contact_email"`
	ContactFormURL string   `mapstructure:"contact_form_url"`
	BusinessHours  string   `mapstructure:"business_hours"`
	Welcome        string   `mapstructure:"welcome"`
	QuickReplies   []string `mapstructure:"quick_replies"`
}

// IndexConfig controls the build pipeline.
type IndexConfig struct {
	Store             string        `mapstructure:"store"`
	Path              string        `mapstructure:"path"`
	Fetcher           string        `mapstructure:"fetcher"`
	Extractor         string        `mapstructure:"extractor"`
	MaxChunkLength    int           `mapstructure:"max_chunk_length"`
	MinTextLength     int           `mapstructure:"min_text_length"`
	Dimensions        int           `mapstructure:"dimensions"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	BuildTimeout      time.Duration `mapstructure:"build_timeout"`
	BuildCommand      []string      `mapstructure:"build_command"`
}

// ScheduleConfig defines the weekly refresh window.
type ScheduleConfig struct {
	Cron   string        `mapstructure:"cron"`
	Window time.Duration `mapstructure:"window"`
}

// ChatConfig controls the model provider and fallback behavior.
type ChatConfig struct {
	Provider          string  `mapstructure:"provider"`
	Model             string  `mapstructure:"model"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float32 `mapstructure:"temperature"`
	HistoryLimit      int     `mapstructure:"history_limit"`
	FallbackThreshold int     `mapstructure:"fallback_threshold"`
}

// ModelName returns the configured model or the provider's default.
func (c ChatConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

// SessionConfig selects the client session store.
type SessionConfig struct {
	Store     string        `mapstructure:"store"`
	Dir       string        `mapstructure:"dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ServerConfig controls the HTTP gateway.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:    "O&H Management",
			BaseURL: "https://oh-management.at",
			Pages: []string{
				"/",
				"/angebot.html",
				"/branchen.html",
				"/kontakt.html",
				"/ueber-uns.html",
				"/agb.html",
				"/impressum.html",
				"/datenschutz.html",
			},
			ContactEmail:   "info@oh-management.at",
			ContactFormURL: "/kontakt.html",
			BusinessHours:  "Mo–Fr 9–17 Uhr",
			Welcome:        "Willkommen, wie kann ich Ihnen weiterhelfen?",
			QuickReplies:   []string{"Termin buchen", "Leistungen", "Kontakt"},
		},
		Index: IndexConfig{
			Store:             IndexStoreJSON,
			Path:              "data/rag.json",
			Fetcher:           FetcherHTTP,
			Extractor:         ExtractorRegex,
			MaxChunkLength:    DefaultMaxChunkLength,
			MinTextLength:     50,
			Dimensions:        1536,
			RequestsPerSecond: 2,
			FetchTimeout:      10 * time.Second,
			BuildTimeout:      5 * time.Minute,
		},
		Schedule: ScheduleConfig{
			Cron:   "0 2 * * 1",
			Window: time.Hour,
		},
		Chat: ChatConfig{
			Provider:          ProviderGemini,
			MaxTokens:         300,
			Temperature:       0.7,
			HistoryLimit:      DefaultHistoryLimit,
			FallbackThreshold: DefaultFallbackThreshold,
		},
		Session: SessionConfig{
			Store: SessionStoreMemory,
			Dir:   ".sitebot/sessions",
			TTL:   24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Name) == "" {
		return Errorf(EINVALID, "site.name required")
	}
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "site.base_url must be an absolute URL: %q", c.Site.BaseURL)
	}
	if len(c.Site.Pages) == 0 {
		return Errorf(EINVALID, "site.pages required")
	}
	for _, p := range c.Site.Pages {
		if !strings.HasPrefix(p, "/") {
			return Errorf(EINVALID, "site.pages entry must start with '/': %q", p)
		}
	}
	if c.Site.ContactEmail == "" {
		return Errorf(EINVALID, "site.contact_email required")
	}

	switch c.Index.Store {
	case IndexStoreJSON, IndexStoreSQLite:
	default:
		return Errorf(EINVALID, "index.store must be %q or %q, got %q", IndexStoreJSON, IndexStoreSQLite, c.Index.Store)
	}
	if c.Index.Path == "" {
		return Errorf(EINVALID, "index.path required")
	}
	switch c.Index.Fetcher {
	case FetcherHTTP, FetcherRod:
	default:
		return Errorf(EINVALID, "index.fetcher must be %q or %q, got %q", FetcherHTTP, FetcherRod, c.Index.Fetcher)
	}
	switch c.Index.Extractor {
	case ExtractorRegex, ExtractorReadability, ExtractorTrafilatura:
	default:
		return Errorf(EINVALID, "index.extractor must be one of %q, %q, %q, got %q",
			ExtractorRegex, ExtractorReadability, ExtractorTrafilatura, c.Index.Extractor)
	}
	if c.Index.Dimensions <= 0 {
		return Errorf(EINVALID, "index.dimensions must be positive")
	}
	if c.Index.RequestsPerSecond <= 0 {
		return Errorf(EINVALID, "index.requests_per_second must be positive")
	}
	if c.Index.BuildTimeout <= 0 {
		return Errorf(EINVALID, "index.build_timeout must be positive")
	}

	if c.Schedule.Cron == "" {
		return Errorf(EINVALID, "schedule.cron required")
	}
	if c.Schedule.Window <= 0 {
		return Errorf(EINVALID, "schedule.window must be positive")
	}

	switch c.Chat.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Errorf(EINVALID, "chat.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.Chat.Provider)
	}
	if c.Chat.MaxTokens <= 0 {
		return Errorf(EINVALID, "chat.max_tokens must be positive")
	}
	if c.Chat.HistoryLimit <= 0 {
		return Errorf(EINVALID, "chat.history_limit must be positive")
	}
	if c.Chat.FallbackThreshold <= 0 {
		return Errorf(EINVALID, "chat.fallback_threshold must be positive")
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreFS, SessionStoreRedis:
	default:
		return Errorf(EINVALID, "session.store must be one of %q, %q, %q, got %q",
			SessionStoreMemory, SessionStoreFS, SessionStoreRedis, c.Session.Store)
	}
	if c.Session.Store == SessionStoreFS && c.Session.Dir == "" {
		return Errorf(EINVALID, "session.dir required for fs store")
	}
	if c.Session.Store == SessionStoreRedis && c.Session.RedisAddr == "" {
		return Errorf(EINVALID, "session.redis_addr required for redis store")
	}

	return nil
}

// PageURL returns the absolute URL of a configured page path.
func (c SiteConfig) PageURL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
