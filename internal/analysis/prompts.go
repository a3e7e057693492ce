package analysis

import (
	"fmt"
	"strings"
)

// analyzeSystemPrompt instructs the model to propose note improvements
// as structured JSON.
const analyzeSystemPrompt = `You are a note curator for a personal knowledge base of markdown notes.
Your task is to review one note and propose concrete improvements.

You must output ONLY a JSON object with these exact fields:
- actions: array of objects, each with:
  - kind: one of [enrich, structure, summarize, score, inject_questions, restructure_graph]
  - target: section title the action operates on (empty string if not section-specific)
  - content: the text to add, the replacement summary, the comma-separated section or link list, or the numeric score
  - confidence: number 0 to 1 (how sure you are this improves the note)
  - rationale: one sentence explaining the action
- confidence: number 0 to 1 (overall confidence in this analysis)
- rationale: brief explanation of your assessment

Action semantics:
- enrich: append content to the target section
- structure: content is a comma-separated list of section titles the note should have
- summarize: content replaces the Summary section body
- score: content is an integer 0-100 quality estimate
- inject_questions: content is a markdown list of open questions worth answering
- restructure_graph: content is a newline-separated list of note titles to link under Related

CRITICAL RULES:
1. Propose at most 5 actions; prefer fewer, higher-confidence actions
2. Never invent facts; enrich only with content implied by the note itself
3. restructure_graph replaces all existing related links, so use it sparingly
4. Use strict JSON numeric literals (e.g., 0.85, never .85)
5. Output ONLY the JSON object, no markdown, no explanation`

// buildAnalyzeUserPrompt renders one note and its structural stats for
// the model.
func buildAnalyzeUserPrompt(nc NoteContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Note type: %s\n", nc.Type)
	fmt.Fprintf(&b, "Importance: %s\n", nc.Importance)
	fmt.Fprintf(&b, "Word count: %d\n", nc.Stats.WordCount)
	fmt.Fprintf(&b, "Sections: %d\n", nc.Stats.SectionCount())
	fmt.Fprintf(&b, "Has summary: %t\n", nc.Stats.Summary)
	fmt.Fprintf(&b, "Outgoing links: %d\n", len(nc.Stats.Links))
	b.WriteString("\n--- NOTE CONTENT ---\n")
	b.WriteString(nc.Content)
	b.WriteString("\n--- END NOTE ---\n")

	return b.String()
}
