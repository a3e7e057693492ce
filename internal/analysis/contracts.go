// Package analysis runs notes through tiered model analysis with a
// deterministic rules fallback, and scores the resulting note quality.
package analysis

import (
	"github.com/lmercadier/revoir/internal/content"
	"github.com/lmercadier/revoir/internal/domain"
)

// Escalation thresholds. A tier whose confidence falls below its
// threshold hands the note to the next tier.
const (
	FastThreshold = 0.7
	DeepThreshold = 0.5
)

// Default auto-apply thresholds; both are overridable via Policy.
const (
	DefaultAutoApplyThreshold   = 0.85
	DefaultRestructureThreshold = 0.95
)

// Rules-fallback confidence. Below the auto-apply threshold, so rule
// actions always queue for confirmation instead of applying.
const rulesConfidence = 0.80

// NoteContext is everything the pipeline needs to analyze one note.
// Stats is derived from Content by the caller (or BuildContext).
type NoteContext struct {
	NoteID     string
	Title      string
	Type       domain.NoteType
	Importance domain.Importance
	Content    string
	Stats      content.DocStats
}

// BuildContext derives a NoteContext from a note.
func BuildContext(note *domain.Note) NoteContext {
	return NoteContext{
		NoteID:     note.ID,
		Title:      note.Title,
		Type:       note.Type,
		Importance: note.Importance,
		Content:    note.Content,
		Stats:      content.Analyze(note.Content),
	}
}

// Policy controls which proposed actions may be applied without human
// confirmation.
type Policy struct {
	AutoApplyThreshold   float64
	RestructureThreshold float64
}

// DefaultPolicy returns the standard auto-apply policy.
func DefaultPolicy() Policy {
	return Policy{
		AutoApplyThreshold:   DefaultAutoApplyThreshold,
		RestructureThreshold: DefaultRestructureThreshold,
	}
}

// Allows reports whether the action may be applied automatically.
// Destructive actions carry the stricter threshold.
func (p Policy) Allows(action domain.ProposedAction) bool {
	if action.Kind.Destructive() {
		return action.Confidence >= p.RestructureThreshold
	}
	return action.Confidence >= p.AutoApplyThreshold
}
