package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ohmanagement/sitebot"
)

// DefaultBuildTimeout bounds one triggered build.
const DefaultBuildTimeout = 5 * time.Minute

// Ensure Refresher implements sitebot.Refresher at compile time.
var _ sitebot.Refresher = (*Refresher)(nil)

// Refresher triggers builds from the schedule or by manual override.
type Refresher struct {
	Gate    sitebot.ScheduleGate
	Builder sitebot.IndexBuilder
	Timeout time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// Refresh runs a build when manual is true or the gate is open at the
// current time. A closed gate returns a skipped result and no error.
func (r *Refresher) Refresh(ctx context.Context, manual bool) (*sitebot.RefreshResult, error) {
	now := r.now()
	if !manual && !r.Gate.Open(now) {
		r.logger().Info("refresh skipped", "time", now)
		return &sitebot.RefreshResult{
			Skipped:   true,
			Message:   "Scheduled refresh skipped - not the right time",
			Timestamp: now,
		}, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger().Info("refresh started", "manual", manual, "timeout", timeout)
	build, err := r.Builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh index: %w", err)
	}

	return &sitebot.RefreshResult{
		Message:   "RAG index refreshed successfully",
		Timestamp: r.now(),
		Build:     build,
	}, nil
}

func (r *Refresher) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
