// Package evaluation scores interview answers and summarizes interviews.
//
// Every call tries the configured AI provider once and, when there is no
// provider, the call fails, or the reply is not a JSON object, falls back to
// deterministic heuristics. Failures are logged and counted but never
// returned: callers always receive a usable result.
package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/pavelanni/interviewprep/internal/llm"
	"github.com/pavelanni/interviewprep/internal/llm/prompts"
)

// Weights are the heuristic overall-score weights. They should sum to 1.
type Weights struct {
	Relevance    float64
	Completeness float64
	KeyPoints    float64
	Confidence   float64
}

// Config holds the tuning constants of the engine.
type Config struct {
	// Variant selects the grading strictness of AI prompts.
	Variant prompts.PromptVariant
	// OptimalWordCount is the answer length that earns full completeness.
	OptimalWordCount int
	// KeyPointMatchRatio is the share of a key point's significant words that
	// must appear in the answer for the point to count as covered.
	KeyPointMatchRatio float64
	Weights            Weights
}

// DefaultConfig returns the stock tuning constants.
func DefaultConfig() Config {
	return Config{
		Variant:            prompts.PromptStandard,
		OptimalWordCount:   50,
		KeyPointMatchRatio: 0.5,
		Weights: Weights{
			Relevance:    0.3,
			Completeness: 0.2,
			KeyPoints:    0.3,
			Confidence:   0.2,
		},
	}
}

// Engine evaluates answers and generates interview insights.
type Engine struct {
	provider llm.Provider
	cfg      Config
}

// New creates an engine around the provider chosen at startup. A nil
// provider behaves like llm.None.
func New(p llm.Provider, cfg Config) *Engine {
	if p == nil {
		p = llm.None{}
	}
	def := DefaultConfig()
	if cfg.Variant == "" {
		cfg.Variant = def.Variant
	}
	if cfg.OptimalWordCount <= 0 {
		cfg.OptimalWordCount = def.OptimalWordCount
	}
	if cfg.KeyPointMatchRatio <= 0 || cfg.KeyPointMatchRatio > 1 {
		cfg.KeyPointMatchRatio = def.KeyPointMatchRatio
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	return &Engine{provider: p, cfg: cfg}
}

// ProviderName returns the name of the active provider.
func (e *Engine) ProviderName() string {
	return e.provider.Name()
}

// generate runs one provider call and parses the reply. It returns
// llm.ErrNoProvider without building a prompt when no provider is configured.
func (e *Engine) generate(ctx context.Context, prompt func() (string, error)) (replyFields, error) {
	if llm.IsNone(e.provider) {
		return replyFields{}, llm.ErrNoProvider
	}
	text, err := prompt()
	if err != nil {
		return replyFields{}, err
	}
	raw, err := e.provider.Generate(ctx, text)
	if err != nil {
		return replyFields{}, err
	}
	res, err := llm.ParseReply(raw)
	if err != nil {
		return replyFields{}, err
	}
	return replyFields{res}, nil
}

func (e *Engine) logFallback(op string, err error) {
	if errors.Is(err, llm.ErrNoProvider) {
		slog.Debug("no AI provider, using heuristic", "op", op)
		return
	}
	slog.Warn("AI provider unusable, using heuristic", "op", op, "provider", e.provider.Name(), "error", err)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(f float64) int {
	return int(math.Round(f))
}
