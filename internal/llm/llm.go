package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/interviewprep/internal/metrics"
)

// ErrNoProvider is returned by the None provider for every call.
var ErrNoProvider = errors.New("no AI provider configured")

// Provider is the single capability the evaluation core needs from a hosted model.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Generate sends a prompt and returns the raw reply text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Kind selects one of the supported providers.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindNone   Kind = "none"
)

// Config selects and configures the active provider. It is read once at
// startup; the choice is not revisited per call.
type Config struct {
	Provider Kind

	OpenAIURL   string
	OpenAIKey   string
	OpenAIModel string

	GeminiKey   string
	GeminiModel string

	// Timeout bounds a single Generate call. Zero leaves only the SDK default.
	Timeout time.Duration
}

// New builds the provider named by cfg.Provider. An unknown name is an error.
// A known provider that cannot be built, for example because its API key is
// missing, is logged and replaced by None so scoring falls back to heuristics.
func New(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch Kind(strings.ToLower(string(cfg.Provider))) {
	case KindOpenAI:
		p, err = NewOpenAI(cfg.OpenAIURL, cfg.OpenAIKey, cfg.OpenAIModel)
	case KindGemini:
		p, err = NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case KindNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want openai, gemini or none)", cfg.Provider)
	}
	if err != nil {
		slog.Warn("AI provider unavailable, using heuristic scoring", "provider", cfg.Provider, "error", err)
		return None{}, nil
	}
	return &instrumented{next: p, timeout: cfg.Timeout}, nil
}

// None is the provider used when no hosted model is configured.
type None struct{}

// Name implements Provider.
func (None) Name() string { return string(KindNone) }

// Generate always fails with ErrNoProvider.
func (None) Generate(context.Context, string) (string, error) { return "", ErrNoProvider }

// IsNone reports whether p is the None provider.
func IsNone(p Provider) bool {
	if p == nil {
		return true
	}
	_, ok := p.(None)
	return ok
}

// instrumented applies the per-call timeout and records metrics around a provider.
type instrumented struct {
	next    Provider
	timeout time.Duration
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := i.next.Generate(ctx, prompt)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(i.next.Name(), outcome).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(i.next.Name()).Observe(elapsed.Seconds())
	slog.Debug("provider call", "provider", i.next.Name(), "outcome", outcome, "elapsed", elapsed)
	return text, err
}

// Ping checks the provider endpoint when the provider supports a health check.
func Ping(ctx context.Context, p Provider) error {
	if i, ok := p.(*instrumented); ok {
		p = i.next
	}
	if pp, ok := p.(interface{ Ping(context.Context) error }); ok {
		return pp.Ping(ctx)
	}
	return nil
}
