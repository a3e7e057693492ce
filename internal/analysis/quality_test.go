package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmercadier/revoir/internal/content"
	"github.com/lmercadier/revoir/internal/domain"
)

func contextFor(t *testing.T, raw string) NoteContext {
	t.Helper()
	return NoteContext{
		NoteID:  "note-1",
		Type:    domain.TypeEntity,
		Content: raw,
		Stats:   content.Analyze(raw),
	}
}

func TestQualityScoreBareNote(t *testing.T) {
	nc := contextFor(t, "# Title\n\nword\n")

	// 50 base + 0 words bonus + no summary + 0 sections + 0 links.
	assert.Equal(t, 50, QualityScore(nc, nil))
}

func TestQualityScoreRichNote(t *testing.T) {
	body := strings.Repeat("word ", 1000)
	raw := "# Title\n\n## Summary\n\nreal summary text\n\n## A\n\n" + body +
		"\n## B\n\nx\n\n## C\n\nx\n\n## D\n\nx\n\n## Related\n\n" +
		"- [[One]]\n- [[Two]]\n- [[Three]]\n- [[Four]]\n- [[Five]]\n- [[Six]]\n"
	nc := contextFor(t, raw)

	// All bonuses saturate: 50 + 20 + 15 + 10 + 10.
	assert.Equal(t, 100, QualityScore(nc, nil))
}

func TestQualityScorePendingActionsPenalty(t *testing.T) {
	nc := contextFor(t, "# Title\n\n## Summary\n\nsolid summary\n")
	result := &domain.AnalysisResult{
		Actions: []domain.ProposedAction{
			{Kind: domain.ActionEnrich},
			{Kind: domain.ActionStructure},
			{Kind: domain.ActionSummarize, Applied: true},
		},
	}

	base := QualityScore(nc, nil)
	assert.Equal(t, base-10, QualityScore(nc, result))
}

func TestQualityScoreClampedToZero(t *testing.T) {
	nc := contextFor(t, "")
	result := &domain.AnalysisResult{}
	for i := 0; i < 30; i++ {
		result.Actions = append(result.Actions, domain.ProposedAction{Kind: domain.ActionEnrich})
	}

	assert.Equal(t, 0, QualityScore(nc, result))
}

func TestMapToCycleQualityBreakpoints(t *testing.T) {
	cases := map[int]int{
		100: 5, 90: 5,
		89: 4, 75: 4,
		74: 3, 60: 3,
		59: 2, 40: 2,
		39: 1, 20: 1,
		19: 0, 0: 0,
	}
	for score, want := range cases {
		assert.Equal(t, want, MapToCycleQuality(score), "score %d", score)
	}
}

func TestMapToCycleQualityMonotonic(t *testing.T) {
	prev := MapToCycleQuality(0)
	for score := 1; score <= 100; score++ {
		q := MapToCycleQuality(score)
		assert.GreaterOrEqual(t, q, prev, "score %d", score)
		prev = q
	}
}
