package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/cronexpr"
	"github.com/ohmanagement/sitebot/crawl"
	sitebotecho "github.com/ohmanagement/sitebot/echo"
	"github.com/ohmanagement/sitebot/fs"
	"github.com/ohmanagement/sitebot/gateway"
	"github.com/ohmanagement/sitebot/gemini"
	"github.com/ohmanagement/sitebot/goquery"
	sitebothttp "github.com/ohmanagement/sitebot/http"
	"github.com/ohmanagement/sitebot/memory"
	"github.com/ohmanagement/sitebot/openai"
	sitebotprometheus "github.com/ohmanagement/sitebot/prometheus"
	"github.com/ohmanagement/sitebot/readability"
	"github.com/ohmanagement/sitebot/redis"
	"github.com/ohmanagement/sitebot/rod"
	"github.com/ohmanagement/sitebot/session"
	sitebotslog "github.com/ohmanagement/sitebot/slog"
	"github.com/ohmanagement/sitebot/sqlite"
	"github.com/ohmanagement/sitebot/trafilatura"
	"github.com/ohmanagement/sitebot/viper"
	"github.com/ohmanagement/sitebot/widget"
	"github.com/ohmanagement/sitebot/xxhash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin feeds the chat command.
	Stdin io.Reader

	// Getenv looks up secrets such as GEMINI_API_KEY.
	Getenv func(string) string

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin:  os.Stdin,
		Getenv: os.Getenv,
	}
}

// Close releases resources opened while wiring commands, in reverse order.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitebot"),
		kong.Description("Website assistant: page index builder and streaming chat gateway"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitebot --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := viper.LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", sitebot.ErrorMessage(err))
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Debug)
	defer m.Close()

	switch kongCtx.Command() {
	case "build":
		if cli.Build.Out != "" {
			deps.Config.Index.Path = cli.Build.Out
		}
		deps.Builder, err = m.builder(deps.Config, cli.Build.Tokens, deps.Logger)
	case "refresh":
		deps.Refresher, err = m.refresher(deps.Config, deps.Logger)
	case "serve":
		deps.Server, err = m.server(ctx, deps.Config, deps.Logger)
	case "chat":
		deps.Widget, deps.Metrics, err = m.widget(ctx, deps.Config, &cli.Chat, deps.Logger)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", sitebot.ErrorMessage(err))
		return err
	}

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// builder wires the index build. A configured build command replaces the
// in-process pipeline.
func (m *Main) builder(cfg sitebot.Config, countTokens bool, logger *slog.Logger) (sitebot.IndexBuilder, error) {
	if len(cfg.Index.BuildCommand) > 0 {
		return &crawl.CommandBuilder{Command: cfg.Index.BuildCommand}, nil
	}

	fetcher, err := m.fetcher(cfg.Index)
	if err != nil {
		return nil, err
	}
	store, err := m.indexStore(cfg.Index)
	if err != nil {
		return nil, err
	}

	b := &crawl.Builder{
		Crawler: &crawl.Crawler{
			Fetcher:     sitebotslog.NewLoggingFetcher(fetcher, logger),
			RateLimiter: crawl.NewDomainLimiter(cfg.Index.RequestsPerSecond),
			Logger:      logger,
		},
		Site:           cfg.Site,
		Extractor:      newExtractor(cfg.Index.Extractor),
		Titles:         goquery.NewTitleExtractor(),
		Embedder:       xxhash.NewEmbedder(cfg.Index.Dimensions),
		Store:          sitebotslog.NewLoggingIndexStore(store, logger),
		MaxChunkLength: cfg.Index.MaxChunkLength,
		MinTextLength:  cfg.Index.MinTextLength,
		Logger:         logger,
	}

	if countTokens {
		tc, err := gemini.NewTokenCounter(gemini.DefaultModel)
		if err != nil {
			return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "token counter: %v", err)
		}
		b.TokenCounter = tc
	}

	return b, nil
}

func (m *Main) refresher(cfg sitebot.Config, logger *slog.Logger) (sitebot.Refresher, error) {
	gate, err := cronexpr.NewGate(cfg.Schedule.Cron, cfg.Schedule.Window)
	if err != nil {
		return nil, err
	}
	builder, err := m.builder(cfg, false, logger)
	if err != nil {
		return nil, err
	}
	return &crawl.Refresher{
		Gate:    gate,
		Builder: builder,
		Timeout: cfg.Index.BuildTimeout,
		Logger:  logger,
	}, nil
}

func (m *Main) fetcher(cfg sitebot.IndexConfig) (sitebot.Fetcher, error) {
	if cfg.Fetcher == sitebot.FetcherRod {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(cfg.FetchTimeout))
		if err != nil {
			return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "failed to start browser (Chrome or Chromium must be installed): %v", err)
		}
		m.closers = append(m.closers, f)
		return f, nil
	}

	f := sitebothttp.NewFetcher(sitebothttp.WithTimeout(cfg.FetchTimeout))
	m.closers = append(m.closers, f)
	return f, nil
}

func (m *Main) indexStore(cfg sitebot.IndexConfig) (sitebot.IndexStore, error) {
	if cfg.Store == sitebot.IndexStoreSQLite {
		db := sqlite.NewDB(cfg.Path)
		if err := db.Open(); err != nil {
			return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "failed to open index database at %q: %v", cfg.Path, err)
		}
		m.closers = append(m.closers, db)
		return sqlite.NewIndexStore(db), nil
	}
	return fs.NewIndexStore(cfg.Path), nil
}

func newExtractor(name string) sitebot.Extractor {
	switch name {
	case sitebot.ExtractorReadability:
		return readability.NewExtractor()
	case sitebot.ExtractorTrafilatura:
		return trafilatura.NewExtractor()
	default:
		return sitebot.TextExtractor{}
	}
}

// server wires the chat gateway, the refresh trigger and runtime metrics.
func (m *Main) server(ctx context.Context, cfg sitebot.Config, logger *slog.Logger) (*sitebotecho.Server, error) {
	streamer, err := m.streamer(ctx, cfg.Chat)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(sitebotslog.NewLoggingStreamer(streamer, logger), cfg.Site, logger)
	gw.HistoryLimit = cfg.Chat.HistoryLimit
	gw.FallbackThreshold = cfg.Chat.FallbackThreshold

	refresher, err := m.refresher(cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return sitebotecho.NewServer(gw, refresher, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger), nil
}

func (m *Main) streamer(ctx context.Context, cfg sitebot.ChatConfig) (sitebot.Streamer, error) {
	if cfg.Provider == sitebot.ProviderOpenAI {
		apiKey := m.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, sitebot.Errorf(sitebot.EINVALID, "OPENAI_API_KEY environment variable not set")
		}
		return openai.NewStreamer(apiKey,
			openai.WithModel(cfg.ModelName()),
			openai.WithTemperature(cfg.Temperature),
			openai.WithMaxTokens(cfg.MaxTokens),
		), nil
	}

	apiKey := m.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, sitebot.Errorf(sitebot.EINVALID, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "failed to connect to Gemini API: %v", err)
	}
	return gemini.NewStreamer(client, gemini.Settings{
		Model:       cfg.ModelName(),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}), nil
}

// widget wires the terminal chat session. Analytics events are counted in
// the returned registry and logged at debug level, only with consent.
func (m *Main) widget(ctx context.Context, cfg sitebot.Config, c *ChatCmd, logger *slog.Logger) (*widget.Widget, prometheus.Gatherer, error) {
	id := c.Session
	if id == "" {
		id = uuid.NewString()
	}

	store, err := m.sessionStore(ctx, cfg.Session, id)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := sitebotprometheus.NewEventSink(reg)
	if err != nil {
		return nil, nil, err
	}
	analytics := c.Analytics
	events := sitebot.NewConsentSink(
		sitebotslog.NewLoggingEventSink(metrics, logger),
		sitebot.ConsentFunc(func() bool { return analytics }),
	)

	sessions := session.NewManager(store, cfg.Chat.HistoryLimit, logger)
	w := widget.New(sitebothttp.NewChatClient(c.Endpoint), sessions, cfg.Site, events, logger)
	w.ID = id
	w.Threshold = cfg.Chat.FallbackThreshold
	return w, reg, nil
}

func (m *Main) sessionStore(ctx context.Context, cfg sitebot.SessionConfig, id string) (sitebot.SessionStore, error) {
	switch cfg.Store {
	case sitebot.SessionStoreFS:
		store, err := fs.NewSessionStoreDir(cfg.Dir, id)
		if err != nil {
			return nil, err
		}
		return store, nil
	case sitebot.SessionStoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, client)
		return redis.NewSessionStore(client, id, cfg.TTL), nil
	default:
		return memory.NewSessionStore(nil), nil
	}
}
