package sitebot

import (
	"context"
	"time"
)

// ScheduleGate decides whether a scheduled refresh may run at a given time.
type ScheduleGate interface {
	Open(t time.Time) bool
}

// RefreshResult reports the outcome of one refresh trigger. A refresh
// outside the schedule window is a skip, not an error.
type RefreshResult struct {
	Skipped   bool
	Message   string
	Timestamp time.Time

	// Build is set when a build ran.
	Build *BuildResult
}

// Refresher triggers index rebuilds.
type Refresher interface {
	// Refresh runs a build when the schedule gate is open or manual is
	// true. The build runs under the refresher's timeout.
	Refresh(ctx context.Context, manual bool) (*RefreshResult, error)
}
