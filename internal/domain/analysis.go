package domain

// ProposedAction is one improvement the analysis pipeline suggests for
// a note. Target names the section (or link) the action operates on.
type ProposedAction struct {
	Kind       ActionKind
	Target     string
	Content    string
	Confidence float64 // 0-1
	Rationale  string
	Tier       string // analysis tier that produced the action
	Applied    bool
}

// AnalysisResult is the outcome of one pipeline run over a note.
type AnalysisResult struct {
	NoteID     string
	Actions    []ProposedAction
	Confidence float64
	TierUsed   string // "fast", "standard", "deep" or "rules"
	Escalated  bool
	Rationale  string
}

// AppliedCount returns how many actions were auto-applied.
func (r *AnalysisResult) AppliedCount() int {
	n := 0
	for _, a := range r.Actions {
		if a.Applied {
			n++
		}
	}
	return n
}

// PendingCount returns how many actions await external confirmation.
func (r *AnalysisResult) PendingCount() int {
	return len(r.Actions) - r.AppliedCount()
}
