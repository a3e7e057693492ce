package domain

import "time"

// Note is a knowledge-base note as seen by the scheduling engine.
// Content parsing and mutation semantics live in the content package;
// the scheduler only reads type and importance.
type Note struct {
	ID         string
	Title      string
	Type       NoteType
	Importance Importance
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReviewConfig is the static per-type scheduling configuration.
type ReviewConfig struct {
	BaseIntervalHours float64
	MaxIntervalDays   float64
	InitialEasiness   float64
	AutoEnrich        bool
	WebSearch         bool
	SkipRevision      bool
}

// reviewConfigs maps every note type to its review configuration.
// Memory notes are journal-like and permanently excluded from scheduling.
var reviewConfigs = map[NoteType]ReviewConfig{
	TypeEntity:  {BaseIntervalHours: 24, MaxIntervalDays: 90, InitialEasiness: 2.5, AutoEnrich: true, WebSearch: true},
	TypeEvent:   {BaseIntervalHours: 12, MaxIntervalDays: 60, InitialEasiness: 2.5, AutoEnrich: true},
	TypePerson:  {BaseIntervalHours: 24, MaxIntervalDays: 120, InitialEasiness: 2.5, AutoEnrich: true, WebSearch: true},
	TypeProcess: {BaseIntervalHours: 48, MaxIntervalDays: 90, InitialEasiness: 2.5},
	TypeProject: {BaseIntervalHours: 12, MaxIntervalDays: 30, InitialEasiness: 2.3, AutoEnrich: true},
	TypeMeeting: {BaseIntervalHours: 6, MaxIntervalDays: 14, InitialEasiness: 2.3},
	TypeMemory:  {BaseIntervalHours: 24, MaxIntervalDays: 365, InitialEasiness: 2.5, SkipRevision: true},
	TypeOther:   {BaseIntervalHours: 24, MaxIntervalDays: 60, InitialEasiness: 2.5},
}

// ConfigFor returns the review configuration for a note type.
// Unknown types get the "other" configuration.
func ConfigFor(t NoteType) ReviewConfig {
	if cfg, ok := reviewConfigs[t]; ok {
		return cfg
	}
	return reviewConfigs[TypeOther]
}
