package analysis

import (
	"fmt"
	"strings"

	"github.com/lmercadier/revoir/internal/domain"
)

// thinSectionWords is the word count below which a section is flagged
// as needing material.
const thinSectionWords = 10

// requiredSections lists the sections each note type is expected to
// carry. Types not listed fall back to the defaults.
var requiredSections = map[domain.NoteType][]string{
	domain.TypePerson:  {"Summary", "Context", "Related"},
	domain.TypeMeeting: {"Summary", "Decisions", "Action items"},
	domain.TypeProject: {"Summary", "Status", "Next steps"},
	domain.TypeProcess: {"Summary", "Steps"},
}

var defaultSections = []string{"Summary", "Related"}

// RulesAnalysis produces a deterministic analysis of a note without any
// model call: missing-summary detection, thin-section detection, and
// type-specific required-section checks.
func RulesAnalysis(nc NoteContext) *domain.AnalysisResult {
	var actions []domain.ProposedAction

	required, ok := requiredSections[nc.Type]
	if !ok {
		required = defaultSections
	}
	if missing := missingSections(nc, required); len(missing) > 0 {
		actions = append(actions, domain.ProposedAction{
			Kind:       domain.ActionStructure,
			Content:    strings.Join(missing, ", "),
			Confidence: rulesConfidence,
			Rationale:  fmt.Sprintf("a %s note should have: %s", nc.Type, strings.Join(missing, ", ")),
			Tier:       "rules",
		})
	}

	if !nc.Stats.Summary && hasSectionTitled(nc, "Summary") {
		actions = append(actions, domain.ProposedAction{
			Kind:       domain.ActionSummarize,
			Confidence: rulesConfidence,
			Rationale:  "summary section is empty or a placeholder",
			Tier:       "rules",
		})
	}

	for _, s := range nc.Stats.Sections {
		if s.Level > 1 && s.WordCount > 0 && s.WordCount < thinSectionWords {
			actions = append(actions, domain.ProposedAction{
				Kind:       domain.ActionEnrich,
				Target:     s.Title,
				Confidence: rulesConfidence,
				Rationale:  fmt.Sprintf("section %q has only %d words", s.Title, s.WordCount),
				Tier:       "rules",
			})
		}
	}

	rationale := "deterministic structural checks"
	if len(actions) == 0 {
		rationale = "deterministic structural checks found nothing to improve"
	}

	return &domain.AnalysisResult{
		NoteID:     nc.NoteID,
		Actions:    actions,
		Confidence: rulesConfidence,
		TierUsed:   "rules",
		Rationale:  rationale,
	}
}

func missingSections(nc NoteContext, required []string) []string {
	var missing []string
	for _, title := range required {
		if !hasSectionTitled(nc, title) {
			missing = append(missing, title)
		}
	}
	return missing
}

func hasSectionTitled(nc NoteContext, title string) bool {
	for _, s := range nc.Stats.Sections {
		if strings.EqualFold(s.Title, title) {
			return true
		}
	}
	return false
}
