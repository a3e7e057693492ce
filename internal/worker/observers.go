package worker

import (
	"log/slog"

	"github.com/lmercadier/revoir/internal/domain"
)

// Observer receives loop lifecycle notifications. Callbacks run on the
// loop goroutine and must not block.
type Observer interface {
	OnReviewComplete(noteID string, cycle domain.CycleKind, quality int, result *domain.AnalysisResult)
	OnStateChange(from, to domain.WorkerState)
}

// LogObserver writes loop notifications to a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) OnReviewComplete(noteID string, cycle domain.CycleKind, quality int, result *domain.AnalysisResult) {
	o.Logger.Info("review complete",
		slog.String("note_id", noteID),
		slog.String("cycle", string(cycle)),
		slog.Int("quality", quality),
		slog.String("tier", result.TierUsed),
		slog.Int("applied", result.AppliedCount()),
		slog.Int("pending", result.PendingCount()))
}

func (o LogObserver) OnStateChange(from, to domain.WorkerState) {
	o.Logger.Info("worker state change",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
}
