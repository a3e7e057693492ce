package analysis

import "github.com/lmercadier/revoir/internal/domain"

// QualityScore rates a note on a 0-100 scale from its structural stats
// and the analysis outcome. Pending actions count against the score
// since they represent acknowledged, unfixed deficiencies.
func QualityScore(nc NoteContext, result *domain.AnalysisResult) int {
	score := 50

	score += min(20, nc.Stats.WordCount/50)
	if nc.Stats.Summary {
		score += 15
	}
	score += min(10, nc.Stats.SectionCount()*3)
	score += min(10, len(nc.Stats.Links)*2)
	if result != nil {
		score -= 5 * result.PendingCount()
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MapToCycleQuality converts a 0-100 quality score into a 0-5 review
// rating.
func MapToCycleQuality(score int) int {
	switch {
	case score >= 90:
		return 5
	case score >= 75:
		return 4
	case score >= 60:
		return 3
	case score >= 40:
		return 2
	case score >= 20:
		return 1
	default:
		return 0
	}
}
