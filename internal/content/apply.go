package content

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lmercadier/revoir/internal/domain"
)

// Section titles used by generated mutations.
const (
	summaryHeading   = "Summary"
	questionsHeading = "Open questions"
	relatedHeading   = "Related"
)

// scorePattern matches the quality marker comment maintained by the
// score action.
var scorePattern = regexp.MustCompile(`(?m)^<!-- quality: \d+ -->\n?`)

// ApplyAction applies one proposed action to the note content and
// returns the rewritten text. All mutations are additive except
// restructure_graph, which rewrites the related-links section.
func ApplyAction(raw string, action domain.ProposedAction) (string, error) {
	switch action.Kind {
	case domain.ActionEnrich:
		return appendToSection(raw, action.Target, action.Content), nil

	case domain.ActionStructure:
		out := raw
		for _, title := range splitTargets(action.Content) {
			if !hasHeading(out, title) {
				out = appendSection(out, title, "")
			}
		}
		return out, nil

	case domain.ActionSummarize:
		return setSection(raw, summaryHeading, action.Content), nil

	case domain.ActionScore:
		marker := fmt.Sprintf("<!-- quality: %s -->\n", strings.TrimSpace(action.Content))
		if scorePattern.MatchString(raw) {
			return scorePattern.ReplaceAllString(raw, marker), nil
		}
		return marker + raw, nil

	case domain.ActionInjectQuestions:
		return appendToSection(raw, questionsHeading, action.Content), nil

	case domain.ActionRestructureGraph:
		var links []string
		for _, target := range splitTargets(action.Content) {
			links = append(links, "- [["+target+"]]")
		}
		return setSection(raw, relatedHeading, strings.Join(links, "\n")), nil

	default:
		return "", fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

// splitTargets parses a newline- or comma-separated list.
func splitTargets(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' }) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func headingPattern(title string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^#{1,6}\s+` + regexp.QuoteMeta(title) + `[ \t]*$`)
}

func hasHeading(raw, title string) bool {
	return headingPattern(title).MatchString(raw)
}

// sectionBounds returns the [start, end) byte range of the section body
// (after the heading line, before the next heading), or (-1, -1).
func sectionBounds(raw, title string) (int, int) {
	loc := headingPattern(title).FindStringIndex(raw)
	if loc == nil {
		return -1, -1
	}
	bodyStart := loc[1]
	if nl := strings.IndexByte(raw[bodyStart:], '\n'); nl >= 0 {
		bodyStart += nl + 1
	} else {
		bodyStart = len(raw)
	}
	nextHeading := regexp.MustCompile(`(?m)^#{1,6}\s+`).FindStringIndex(raw[bodyStart:])
	if nextHeading == nil {
		return bodyStart, len(raw)
	}
	return bodyStart, bodyStart + nextHeading[0]
}

// appendToSection appends text to the named section's body, creating
// the section at the end of the note if it is missing.
func appendToSection(raw, title, text string) string {
	if title == "" || !hasHeading(raw, title) {
		return appendSection(raw, orDefault(title, "Notes"), text)
	}
	_, end := sectionBounds(raw, title)
	head := strings.TrimRight(raw[:end], "\n")
	out := head + "\n\n" + text + "\n"
	if rest := raw[end:]; rest != "" {
		out += "\n" + rest
	}
	return out
}

// setSection replaces the named section's body, creating the section if
// it is missing.
func setSection(raw, title, text string) string {
	start, end := sectionBounds(raw, title)
	if start == -1 {
		return appendSection(raw, title, text)
	}
	return raw[:start] + "\n" + text + "\n\n" + raw[end:]
}

func appendSection(raw, title, text string) string {
	out := strings.TrimRight(raw, "\n") + "\n\n## " + title + "\n"
	if text != "" {
		out += "\n" + text + "\n"
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
