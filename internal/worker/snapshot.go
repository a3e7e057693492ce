package worker

import (
	"time"

	"github.com/lmercadier/revoir/internal/domain"
)

// Snapshot is a read-only view of the loop for monitoring and CLI
// display.
type Snapshot struct {
	State       domain.WorkerState
	Stats       Stats
	PauseReason string

	SessionStartedAt *time.Time

	IsQuietHours bool
	IsDigestHour bool
	Now          time.Time
}

// Status returns the current snapshot. Safe to call from any
// goroutine while the loop runs.
func (l *Loop) Status(now time.Time) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		State:        l.state,
		Stats:        l.stats,
		PauseReason:  l.pauseReason,
		IsQuietHours: hourInWindow(now.Hour(), l.opts.QuietHoursStart, l.opts.QuietHoursEnd),
		IsDigestHour: now.Hour() == l.opts.DigestHour,
		Now:          now,
	}
	if l.session != nil {
		started := l.session.StartedAt
		snap.SessionStartedAt = &started
	}
	return snap
}
