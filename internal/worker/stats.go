// Package worker runs the cooperative control loop that drives review
// cycles: due-note selection, tiered analysis, action application,
// housekeeping, and the daily digest, all on a single goroutine under
// daily budgets.
package worker

import "time"

// Stats holds the loop's process-wide counters. Daily counters reset
// exactly once per UTC calendar-day transition.
type Stats struct {
	ReviewsToday   int
	RetouchesToday int
	ReviewsTotal   int
	RetouchesTotal int
	ErrorsToday    int
	ActionsApplied int
	ActionsPending int
	LastReviewAt   *time.Time
	LastResetDate  string // YYYY-MM-DD, UTC
}

// Session bounds one processing batch.
type Session struct {
	StartedAt time.Time
}

// Elapsed returns how long the session has been running.
func (s Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
