package domain

// NoteType classifies a note and selects its static review configuration.
type NoteType string

const (
	TypeEntity  NoteType = "entity"
	TypeEvent   NoteType = "event"
	TypePerson  NoteType = "person"
	TypeProcess NoteType = "process"
	TypeProject NoteType = "project"
	TypeMeeting NoteType = "meeting"
	TypeMemory  NoteType = "memory"
	TypeOther   NoteType = "other"
)

// ValidNoteTypes is the canonical set of accepted note type strings.
var ValidNoteTypes = map[string]bool{
	"entity": true, "event": true, "person": true, "process": true,
	"project": true, "meeting": true, "memory": true, "other": true,
}

// CycleKind identifies one of the two independent review tracks a note
// carries: the automated retouche cycle and the human lecture cycle.
type CycleKind string

const (
	CycleRetouche CycleKind = "retouche"
	CycleLecture  CycleKind = "lecture"
)

// Cycles lists all cycle kinds in canonical order.
var Cycles = []CycleKind{CycleRetouche, CycleLecture}

// Importance is a note-level attribute read during due-note selection.
// Archive notes are never selected.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceNormal   Importance = "normal"
	ImportanceLow      Importance = "low"
	ImportanceArchive  Importance = "archive"
)

// ImportanceRank returns a sort priority (lower = more urgent).
func ImportanceRank(i Importance) int {
	switch i {
	case ImportanceCritical:
		return 0
	case ImportanceHigh:
		return 1
	case ImportanceNormal:
		return 2
	case ImportanceLow:
		return 3
	default:
		return 4
	}
}

// ActionKind is the closed set of improvement actions the analysis
// pipeline can propose for a note.
type ActionKind string

const (
	ActionEnrich           ActionKind = "enrich"
	ActionStructure        ActionKind = "structure"
	ActionSummarize        ActionKind = "summarize"
	ActionScore            ActionKind = "score"
	ActionInjectQuestions  ActionKind = "inject_questions"
	ActionRestructureGraph ActionKind = "restructure_graph"
)

// ValidActionKinds is the canonical set of accepted action kind strings.
var ValidActionKinds = map[string]bool{
	"enrich": true, "structure": true, "summarize": true,
	"score": true, "inject_questions": true, "restructure_graph": true,
}

// Destructive reports whether applying the action rewrites existing
// content rather than only adding to it. Destructive actions require a
// higher confidence to auto-apply.
func (k ActionKind) Destructive() bool {
	return k == ActionRestructureGraph
}

// WorkerState is the orchestrator loop's lifecycle state.
type WorkerState string

const (
	WorkerIdle    WorkerState = "idle"
	WorkerRunning WorkerState = "running"
	WorkerPaused  WorkerState = "paused"
	WorkerStopped WorkerState = "stopped"
)
