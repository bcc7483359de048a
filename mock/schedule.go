package mock

import (
	"context"
	"time"

	"github.com/ohmanagement/sitebot"
)

var (
	_ sitebot.ScheduleGate = (*ScheduleGate)(nil)
	_ sitebot.Refresher    = (*Refresher)(nil)
)

// ScheduleGate is a mock implementation of sitebot.ScheduleGate.
type ScheduleGate struct {
	OpenFn func(t time.Time) bool
}

func (g *ScheduleGate) Open(t time.Time) bool {
	return g.OpenFn(t)
}

// Refresher is a mock implementation of sitebot.Refresher.
type Refresher struct {
	RefreshFn func(ctx context.Context, manual bool) (*sitebot.RefreshResult, error)
}

func (r *Refresher) Refresh(ctx context.Context, manual bool) (*sitebot.RefreshResult, error) {
	return r.RefreshFn(ctx, manual)
}
