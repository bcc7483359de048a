package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/ohmanagement/sitebot"
	sitebotecho "github.com/ohmanagement/sitebot/echo"
	"github.com/ohmanagement/sitebot/widget"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config sitebot.Config
	Logger *slog.Logger

	Builder   sitebot.IndexBuilder
	Refresher sitebot.Refresher
	Server    *sitebotecho.Server
	Widget    *widget.Widget
	Metrics   prometheus.Gatherer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" type:"path" help:"Configuration file (JSON or YAML)"`
	Debug  bool   `help:"Enable debug logging"`

	Build   BuildCmd   `cmd:"" help:"Build the page index once"`
	Refresh RefreshCmd `cmd:"" help:"Rebuild the index if the schedule window is open"`
	Serve   ServeCmd   `cmd:"" help:"Run the chat gateway"`
	Chat    ChatCmd    `cmd:"" help:"Chat with the gateway from the terminal"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Out    string `short:"o" help:"Index path (overrides index.path)"`
	Tokens bool   `help:"Count chunk tokens with the Gemini tokenizer"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	Manual bool `short:"m" help:"Rebuild outside the schedule window"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address (overrides server.addr)"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Endpoint    string `short:"e" default:"http://localhost:8080/chat" help:"Gateway chat endpoint"`
	Session     string `help:"Session id to resume (defaults to a new id)"`
	Analytics   bool   `help:"Consent to analytics events"`
	MetricsFile string `type:"path" help:"Write widget metrics in Prometheus text format to this file on exit"`
}
