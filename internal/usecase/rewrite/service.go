package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/metrics"
	"github.com/kailas-cloud/storefind/internal/trace"
)

// Config holds rewriter settings. Start from DefaultConfig and override.
type Config struct {
	// Timeout bounds each completion call.
	Timeout time.Duration
	// MaxRetries is the number of completion attempts before falling back.
	MaxRetries int
	// FallbackToRegex enables the deterministic extraction path when the
	// completion path fails. When disabled, exhaustion is an error.
	FallbackToRegex bool
	// ForceFallback skips the completion path entirely.
	ForceFallback bool
	// Temperature for the completion call.
	Temperature float32
	// MaxTokens for the completion call.
	MaxTokens int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxRetries:      2,
		FallbackToRegex: true,
		Temperature:     0.1,
		MaxTokens:       256,
	}
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 1
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 256
	}
}

// Rewriter turns raw queries into structured components.
type Rewriter struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates a rewriter. completer may be nil when ForceFallback is set.
func New(completer Completer, cfg Config, logger *zap.Logger) *Rewriter {
	cfg.applyDefaults()
	return &Rewriter{completer: completer, cfg: cfg, logger: logger}
}

// Rewrite extracts structured components from a raw shopper query.
// The completion path is tried first (unless forced off); every failure mode
// there is soft and falls through to the regex path when enabled.
func (r *Rewriter) Rewrite(ctx context.Context, rawQuery string) (Outcome, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return Outcome{}, fmt.Errorf("%w: query must be a non-empty string", domain.ErrValidation)
	}

	rec := trace.FromContext(ctx)

	if !r.cfg.ForceFallback && r.completer != nil {
		if res := r.extractLLM(ctx, rawQuery, rec); res.ok {
			metrics.ExtractionTotal.WithLabelValues(string(SourceLLM), "success").Inc()
			rec.Step("rewrite", "components extracted by completion model")
			return Outcome{Components: res.components, Source: SourceLLM}, nil
		} else if !r.cfg.FallbackToRegex {
			metrics.ExtractionTotal.WithLabelValues(string(SourceLLM), "error").Inc()
			return Outcome{}, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, res.reason)
		}
	}

	res := extractFallback(rawQuery)
	if !res.ok {
		metrics.ExtractionTotal.WithLabelValues(string(SourceFallback), "error").Inc()
		return Outcome{}, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, res.reason)
	}
	metrics.ExtractionTotal.WithLabelValues(string(SourceFallback), "success").Inc()
	rec.Step("rewrite", "components extracted by regex fallback")
	return Outcome{Components: res.components, Source: SourceFallback}, nil
}

// extractLLM runs the bounded completion attempts. Every failure is soft;
// the last failure reason is carried in the returned result.
func (r *Rewriter) extractLLM(ctx context.Context, rawQuery string, rec trace.Recorder) result {
	req := CompletionRequest{
		Prompt:      buildPrompt(rawQuery),
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	}

	last := failure("no completion attempts made")
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		last = r.attemptCompletion(ctx, req)
		if last.ok {
			return last
		}
		r.logger.Warn("completion extraction attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.cfg.MaxRetries),
			zap.String("reason", last.reason),
		)
		rec.Step("rewrite_attempt", last.reason)
		if ctx.Err() != nil {
			break
		}
	}
	return last
}

func (r *Rewriter) attemptCompletion(ctx context.Context, req CompletionRequest) result {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := r.completer.Generate(callCtx, req)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return failure("completion call failed: " + err.Error())
	}
	return parseCompletion(text)
}
