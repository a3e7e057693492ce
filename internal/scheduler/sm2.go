package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/lmercadier/revoir/internal/domain"
)

// ErrInvalidQuality is returned when a quality rating is outside 0..5.
// Invalid ratings are a caller error and are never silently clamped.
var ErrInvalidQuality = errors.New("quality rating must be an integer between 0 and 5")

// SM-2 bounds and fixed constants.
const (
	MinEasiness = 1.3
	MaxEasiness = 2.5

	// SecondIntervalHours is the interval after the second consecutive
	// pass. It is fixed across all note types.
	SecondIntervalHours = 12.0

	// PassThreshold is the minimum quality counting as a successful
	// review. Below it the repetition ladder resets.
	PassThreshold = 3
)

// Assessment summarizes where a state sits on the repetition ladder
// after a review.
type Assessment string

const (
	AssessmentRelearning Assessment = "relearning" // failed, ladder reset
	AssessmentLearning   Assessment = "learning"   // first or second pass
	AssessmentReviewing  Assessment = "reviewing"  // interval growing multiplicatively
	AssessmentSaturated  Assessment = "saturated"  // capped at the type's max interval
)

// Outcome holds the next-review parameters computed by Calculate.
type Outcome struct {
	NextDue       time.Time
	Easiness      float64
	IntervalHours float64
	Repetition    int
	Assessment    Assessment
}

// Calculate computes the next review parameters for one state and one
// quality rating, using the SM-2 variant: the easiness factor moves by
// 0.1 − (5−q)(0.08 + (5−q)·0.02) and stays clamped to [1.3, 2.5]; a
// failing quality (< 3) resets the ladder to the type's base interval;
// the second consecutive pass always lands on SecondIntervalHours.
// Calculate is pure: it never touches the repository.
func Calculate(state *domain.ReviewState, quality int, cfg domain.ReviewConfig, now time.Time) (*Outcome, error) {
	if quality < 0 || quality > 5 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	miss := float64(5 - quality)
	efDelta := 0.1 - miss*(0.08+miss*0.02)
	newEF := clampEasiness(state.Easiness + efDelta)

	out := &Outcome{Easiness: newEF}

	if quality < PassThreshold {
		out.Repetition = 0
		out.IntervalHours = cfg.BaseIntervalHours
		out.Assessment = AssessmentRelearning
	} else {
		out.Repetition = state.Repetition + 1
		switch out.Repetition {
		case 1:
			out.IntervalHours = cfg.BaseIntervalHours
			out.Assessment = AssessmentLearning
		case 2:
			out.IntervalHours = SecondIntervalHours
			out.Assessment = AssessmentLearning
		default:
			out.IntervalHours = state.IntervalHours * newEF
			out.Assessment = AssessmentReviewing
			if cap := cfg.MaxIntervalDays * 24; out.IntervalHours > cap {
				out.IntervalHours = cap
				out.Assessment = AssessmentSaturated
			}
		}
	}

	out.NextDue = now.Add(time.Duration(out.IntervalHours * float64(time.Hour)))
	return out, nil
}

func clampEasiness(ef float64) float64 {
	if ef < MinEasiness {
		return MinEasiness
	}
	if ef > MaxEasiness {
		return MaxEasiness
	}
	return ef
}
