package domain

import "time"

// DigestItem is one note surfaced for human attention.
type DigestItem struct {
	NoteID     string
	Title      string
	Type       NoteType
	Importance Importance
	Cycle      CycleKind
	DueSince   *time.Time
}

// Digest is the bounded daily selection of notes surfaced for human
// attention. At most one digest is generated per UTC calendar day.
type Digest struct {
	Date        string // YYYY-MM-DD, UTC
	Items       []DigestItem
	GeneratedAt time.Time
}
