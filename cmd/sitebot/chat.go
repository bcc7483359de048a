package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/widget"
	"github.com/prometheus/client_golang/prometheus"
)

// Run executes the chat command. Each input line is one message; a line
// holding the number of a listed action follows that action. Streamed
// replies are printed as they arrive. With --metrics-file the widget
// metrics are written once the session ends.
func (c *ChatCmd) Run(deps *Dependencies) error {
	err := c.chat(deps)
	if c.MetricsFile != "" && deps.Metrics != nil {
		if werr := prometheus.WriteToTextfile(c.MetricsFile, deps.Metrics); werr != nil {
			fmt.Fprintf(deps.Stderr, "error: write metrics: %v\n", werr)
			err = errors.Join(err, werr)
		}
	}
	return err
}

func (c *ChatCmd) chat(deps *Dependencies) error {
	w := deps.Widget
	out := deps.Stdout

	for _, t := range w.Open(deps.Ctx) {
		printTurn(out, t)
	}
	if quick := w.QuickReplies(); len(quick) > 0 {
		fmt.Fprintf(out, "Quick replies: %s\n", strings.Join(quick, " | "))
	}

	var actions []sitebot.CallToAction
	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}

		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(actions) {
			a := actions[n-1]
			w.ClickCTA(deps.Ctx, a)
			fmt.Fprintf(out, "Open %s\n", a.URL)
			continue
		}

		send := w.Send
		if slices.Contains(w.QuickReplies(), line) {
			send = w.SendQuickReply
		}

		fmt.Fprint(out, "bot: ")
		reply, err := send(deps.Ctx, line, func(delta string) {
			fmt.Fprint(out, delta)
		})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitebot.ErrorMessage(err))
			continue
		}

		actions = printReply(out, reply)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	fmt.Fprintln(out)
	return nil
}

func printTurn(w io.Writer, t sitebot.Turn) {
	fmt.Fprintf(w, "%s: %s\n", t.Role, t.Content)
}

// printReply finishes a reply line and lists its actions. Streamed text was
// already printed while it arrived.
func printReply(w io.Writer, r *widget.Reply) []sitebot.CallToAction {
	if r.Kind != widget.ReplyStream {
		fmt.Fprint(w, r.Text)
	}
	fmt.Fprintln(w)
	for i, a := range r.Actions {
		fmt.Fprintf(w, "  [%d] %s (%s)\n", i+1, a.Label, a.URL)
	}
	return r.Actions
}
