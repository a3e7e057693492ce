package worker

import (
	"time"

	"github.com/lmercadier/revoir/internal/analysis"
)

// Options is the loop's tuning surface. Zero values are replaced with
// the defaults by Normalize.
type Options struct {
	MaxDailyReviews   int
	MaxDailyRetouches int
	MaxSessionMinutes int

	SleepBetweenReviews time.Duration
	SleepWhenIdle       time.Duration
	SleepOnError        time.Duration

	IngestionInterval    time.Duration
	JanitorInterval      time.Duration
	IndexRefreshInterval time.Duration

	RetoucheBatchSize int

	// Quiet hours suppress automated retouche passes. The window wraps
	// midnight when start > end (23 -> 7 covers 23:00-07:00); equal
	// nonzero values disable the window.
	QuietHoursStart int
	QuietHoursEnd   int

	DigestHour     int
	DigestMaxItems int

	Policy analysis.Policy
}

// DefaultOptions returns the standard loop configuration.
func DefaultOptions() Options {
	return Options{
		MaxDailyReviews:      50,
		MaxDailyRetouches:    100,
		MaxSessionMinutes:    5,
		SleepBetweenReviews:  10 * time.Second,
		SleepWhenIdle:        300 * time.Second,
		SleepOnError:         60 * time.Second,
		IngestionInterval:    60 * time.Second,
		JanitorInterval:      24 * time.Hour,
		IndexRefreshInterval: 30 * time.Minute,
		RetoucheBatchSize:    10,
		QuietHoursStart:      23,
		QuietHoursEnd:        7,
		DigestHour:           6,
		DigestMaxItems:       20,
		Policy:               analysis.DefaultPolicy(),
	}
}

// lectureBatchCap bounds one lecture pass regardless of remaining
// daily budget.
const lectureBatchCap = 10

// Normalize fills unset fields with defaults.
func (o Options) Normalize() Options {
	def := DefaultOptions()
	if o.MaxDailyReviews <= 0 {
		o.MaxDailyReviews = def.MaxDailyReviews
	}
	if o.MaxDailyRetouches <= 0 {
		o.MaxDailyRetouches = def.MaxDailyRetouches
	}
	if o.MaxSessionMinutes <= 0 {
		o.MaxSessionMinutes = def.MaxSessionMinutes
	}
	if o.SleepBetweenReviews <= 0 {
		o.SleepBetweenReviews = def.SleepBetweenReviews
	}
	if o.SleepWhenIdle <= 0 {
		o.SleepWhenIdle = def.SleepWhenIdle
	}
	if o.SleepOnError <= 0 {
		o.SleepOnError = def.SleepOnError
	}
	if o.IngestionInterval <= 0 {
		o.IngestionInterval = def.IngestionInterval
	}
	if o.JanitorInterval <= 0 {
		o.JanitorInterval = def.JanitorInterval
	}
	if o.IndexRefreshInterval <= 0 {
		o.IndexRefreshInterval = def.IndexRefreshInterval
	}
	if o.RetoucheBatchSize <= 0 {
		o.RetoucheBatchSize = def.RetoucheBatchSize
	}
	if o.QuietHoursStart == 0 && o.QuietHoursEnd == 0 {
		o.QuietHoursStart = def.QuietHoursStart
		o.QuietHoursEnd = def.QuietHoursEnd
	}
	if o.DigestHour <= 0 {
		o.DigestHour = def.DigestHour
	}
	if o.DigestMaxItems <= 0 {
		o.DigestMaxItems = def.DigestMaxItems
	}
	if o.Policy.AutoApplyThreshold == 0 {
		o.Policy.AutoApplyThreshold = def.Policy.AutoApplyThreshold
	}
	if o.Policy.RestructureThreshold == 0 {
		o.Policy.RestructureThreshold = def.Policy.RestructureThreshold
	}
	return o
}
