package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/llm"
)

// Pipeline analyzes notes tier by tier, starting cheap and escalating
// while confidence stays low. It never returns an error: when every
// tier fails, the deterministic rules analysis stands in.
type Pipeline struct {
	backend llm.Backend
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline. A nil backend disables model tiers
// entirely; every call then goes straight to the rules analysis.
func NewPipeline(backend llm.Backend, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{backend: backend, logger: logger}
}

// tierOrder is the escalation ladder. escalateBelow is the confidence
// under which the next tier is tried; the last tier never escalates.
var tierOrder = []struct {
	tier          llm.Tier
	escalateBelow float64
}{
	{llm.TierFast, FastThreshold},
	{llm.TierStandard, DeepThreshold},
	{llm.TierDeep, 0},
}

// Analyze runs the note through the escalation ladder. A tier failure
// (timeout, transport, unparsable output) escalates like low
// confidence; a failure at the last tier falls back to rules.
func (p *Pipeline) Analyze(ctx context.Context, nc NoteContext) *domain.AnalysisResult {
	if p.backend == nil {
		return RulesAnalysis(nc)
	}

	escalated := false
	for i, step := range tierOrder {
		result, err := p.runTier(ctx, step.tier, nc)
		if err != nil {
			p.logger.Warn("analysis tier failed",
				"note_id", nc.NoteID,
				"tier", step.tier,
				"error", err)
			if i == len(tierOrder)-1 {
				break
			}
			escalated = true
			continue
		}

		if i < len(tierOrder)-1 && result.Confidence < step.escalateBelow {
			escalated = true
			continue
		}

		result.Escalated = escalated
		return result
	}

	result := RulesAnalysis(nc)
	result.Escalated = escalated
	return result
}

// analyzeLLMAction is one action in the JSON structure expected from
// the model.
type analyzeLLMAction struct {
	Kind       string  `json:"kind"`
	Target     string  `json:"target"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// analyzeLLMResponse is the JSON structure expected from the model.
type analyzeLLMResponse struct {
	Actions    []analyzeLLMAction `json:"actions"`
	Confidence float64            `json:"confidence"`
	Rationale  string             `json:"rationale"`
}

func validateAnalyzeResponse(resp analyzeLLMResponse) error {
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", resp.Confidence)
	}
	for _, a := range resp.Actions {
		if !domain.ValidActionKinds[a.Kind] {
			return fmt.Errorf("unknown action kind %q", a.Kind)
		}
		if a.Confidence < 0 || a.Confidence > 1 {
			return fmt.Errorf("action confidence %v out of range", a.Confidence)
		}
	}
	return nil
}

func (p *Pipeline) runTier(ctx context.Context, tier llm.Tier, nc NoteContext) (*domain.AnalysisResult, error) {
	resp, err := p.backend.Invoke(ctx, llm.InvokeRequest{
		Tier:         tier,
		SystemPrompt: analyzeSystemPrompt,
		UserPrompt:   buildAnalyzeUserPrompt(nc),
	})
	if err != nil {
		return nil, err
	}

	parsed, err := llm.ExtractJSON(resp.Text, validateAnalyzeResponse)
	if err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		NoteID:     nc.NoteID,
		Confidence: parsed.Confidence,
		TierUsed:   string(tier),
		Rationale:  parsed.Rationale,
	}
	for _, a := range parsed.Actions {
		result.Actions = append(result.Actions, domain.ProposedAction{
			Kind:       domain.ActionKind(a.Kind),
			Target:     a.Target,
			Content:    a.Content,
			Confidence: a.Confidence,
			Rationale:  a.Rationale,
			Tier:       string(tier),
		})
	}
	return result, nil
}

// MarkAutoApply flags the actions the policy allows to run without
// confirmation. The caller is responsible for actually applying them.
func MarkAutoApply(result *domain.AnalysisResult, policy Policy) {
	for i := range result.Actions {
		result.Actions[i].Applied = policy.Allows(result.Actions[i])
	}
}
