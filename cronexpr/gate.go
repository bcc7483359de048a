// Package cronexpr implements sitebot.ScheduleGate with cron expressions.
package cronexpr

import (
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/ohmanagement/sitebot"
)

// Defaults for the weekly refresh window: Mondays from 02:00 for one hour.
const (
	DefaultExpression = "0 2 * * 1"
	DefaultWindow     = time.Hour
)

// Ensure Gate implements sitebot.ScheduleGate at compile time.
var _ sitebot.ScheduleGate = (*Gate)(nil)

// Gate is open for Window after each time the cron expression fires.
type Gate struct {
	expr   *cronexpr.Expression
	window time.Duration
}

// NewGate parses expression and returns a gate open for window after each
// trigger. A non-positive window selects DefaultWindow.
func NewGate(expression string, window time.Duration) (*Gate, error) {
	expr, err := cronexpr.Parse(expression)
	if err != nil {
		return nil, sitebot.Errorf(sitebot.EINVALID, "invalid cron expression %q: %v", expression, err)
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{expr: expr, window: window}, nil
}

// Open reports whether t falls in [trigger, trigger+window) for some
// trigger of the expression. Times are evaluated in t's location.
func (g *Gate) Open(t time.Time) bool {
	next := g.expr.Next(t.Add(-g.window))
	return !next.IsZero() && !next.After(t)
}
