package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// InvokeRequest holds the parameters for one backend invocation.
type InvokeRequest struct {
	Tier         Tier
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses tier default
	MaxTokens    *int     // nil uses tier default
}

// InvokeResponse holds the result of one backend invocation.
type InvokeResponse struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Backend provides access to a language model at a given capability tier.
type Backend interface {
	// Invoke sends a prompt to the tier's model and returns the raw text
	// response. Each call carries the tier's own timeout.
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error)

	// Available checks whether the Ollama server is reachable.
	Available(ctx context.Context) bool
}

// ollamaBackend implements Backend using the Ollama HTTP API, mapping
// each tier to its configured model.
type ollamaBackend struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewOllamaBackend creates a Backend that talks to a local Ollama instance.
func NewOllamaBackend(cfg Config, observer Observer) Backend {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &ollamaBackend{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse is the JSON body returned by POST /api/generate (non-streaming).
type ollamaResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
}

func (b *ollamaBackend) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error) {
	start := time.Now()

	tierCfg, ok := b.cfg.Tiers[req.Tier]
	if !ok {
		return nil, fmt.Errorf("unknown analysis tier %q", req.Tier)
	}
	temp := tierCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := tierCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	timeoutMs := b.cfg.TierTimeout(req.Tier)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	body := ollamaRequest{
		Model:  tierCfg.Model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temp,
			NumPredict:  maxTok,
		},
	}

	var lastErr error
	attempts := 1 + b.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		resp, err := b.doRequest(ctx, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			b.observer.OnCallComplete(CallEvent{
				Tier:       req.Tier,
				Model:      tierCfg.Model,
				LatencyMs:  latency,
				TokensUsed: resp.EvalCount,
				Success:    true,
			})
			return &InvokeResponse{
				Text:       resp.Response,
				Model:      resp.Model,
				TokensUsed: resp.EvalCount,
				LatencyMs:  latency,
			}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	latency := time.Since(start).Milliseconds()
	errCode := errorCode(lastErr)
	if ctx.Err() != nil {
		errCode = "TIMEOUT"
	}
	b.observer.OnCallComplete(CallEvent{
		Tier:      req.Tier,
		Model:     tierCfg.Model,
		LatencyMs: latency,
		Success:   false,
		ErrorCode: errCode,
	})

	if ctx.Err() != nil {
		return nil, ErrTimeout
	}
	if isConnectionError(lastErr) {
		return nil, ErrBackendUnavailable
	}
	return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (b *ollamaBackend) doRequest(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := b.cfg.Endpoint + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &resp, nil
}

func (b *ollamaBackend) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := b.cfg.Endpoint + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrBackendUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
