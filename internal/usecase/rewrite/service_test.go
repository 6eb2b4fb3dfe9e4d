package rewrite

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
)

// --- Mocks ---

type mockCompleter struct {
	responses []string
	err       error
	calls     int
}

func (m *mockCompleter) Generate(_ context.Context, _ CompletionRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	idx := m.calls - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func newTestRewriter(completer Completer, cfg Config) *Rewriter {
	return New(completer, cfg, zap.NewNop())
}

func TestRewrite_EmptyQuery(t *testing.T) {
	r := newTestRewriter(&mockCompleter{}, DefaultConfig())

	for _, q := range []string{"", "   "} {
		_, err := r.Rewrite(context.Background(), q)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Rewrite(%q) error = %v, want ErrValidation", q, err)
		}
	}
}

func TestRewrite_LLMSuccess(t *testing.T) {
	completer := &mockCompleter{responses: []string{
		`{"semantic_query": "instant noodles", "price_max": 20}`,
	}}
	r := newTestRewriter(completer, DefaultConfig())

	out, err := r.Rewrite(context.Background(), "instant noodles under 20 pesos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceLLM {
		t.Errorf("source = %q, want %q", out.Source, SourceLLM)
	}
	if out.Components.SemanticQuery() != "instant noodles" {
		t.Errorf("semantic query = %q", out.Components.SemanticQuery())
	}
	if completer.calls != 1 {
		t.Errorf("completion calls = %d, want 1", completer.calls)
	}
}

func TestRewrite_RetriesThenSucceeds(t *testing.T) {
	completer := &mockCompleter{responses: []string{
		"not json at all",
		`{"semantic_query": "rice"}`,
	}}
	r := newTestRewriter(completer, Config{MaxRetries: 2})

	out, err := r.Rewrite(context.Background(), "rice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceLLM {
		t.Errorf("source = %q, want %q", out.Source, SourceLLM)
	}
	if completer.calls != 2 {
		t.Errorf("completion calls = %d, want 2", completer.calls)
	}
}

func TestRewrite_FallsBackOnExhaustion(t *testing.T) {
	completer := &mockCompleter{err: errors.New("provider down")}
	r := newTestRewriter(completer, Config{MaxRetries: 2, FallbackToRegex: true})

	out, err := r.Rewrite(context.Background(), "rice above 50 pesos no spicy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceFallback {
		t.Errorf("source = %q, want %q", out.Source, SourceFallback)
	}
	if completer.calls != 2 {
		t.Errorf("completion calls = %d, want 2", completer.calls)
	}
	if got := out.Components.SemanticQuery(); got != "rice" {
		t.Errorf("semantic query = %q, want %q", got, "rice")
	}
}

func TestRewrite_FallbackDisabled(t *testing.T) {
	completer := &mockCompleter{err: errors.New("provider down")}
	r := newTestRewriter(completer, Config{MaxRetries: 1, FallbackToRegex: false})

	_, err := r.Rewrite(context.Background(), "rice")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("error = %v, want ErrExtractionFailed", err)
	}
}

func TestRewrite_ForceFallbackSkipsCompleter(t *testing.T) {
	completer := &mockCompleter{responses: []string{`{"semantic_query": "wrong path"}`}}
	r := newTestRewriter(completer, Config{ForceFallback: true, FallbackToRegex: true})

	out, err := r.Rewrite(context.Background(), "instant noodles under 20 pesos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceFallback {
		t.Errorf("source = %q, want %q", out.Source, SourceFallback)
	}
	if completer.calls != 0 {
		t.Errorf("completion calls = %d, want 0", completer.calls)
	}
}

func TestRewrite_NilCompleterUsesFallback(t *testing.T) {
	r := newTestRewriter(nil, Config{FallbackToRegex: true})

	out, err := r.Rewrite(context.Background(), "fresh vegetables")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceFallback {
		t.Errorf("source = %q, want %q", out.Source, SourceFallback)
	}
}

func TestRewrite_CanceledContextStopsRetries(t *testing.T) {
	completer := &mockCompleter{err: errors.New("slow")}
	r := newTestRewriter(completer, Config{MaxRetries: 5, FallbackToRegex: true, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.Rewrite(ctx, "rice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Source != SourceFallback {
		t.Errorf("source = %q, want %q", out.Source, SourceFallback)
	}
	if completer.calls != 1 {
		t.Errorf("completion calls = %d, want 1 (stop after ctx cancellation)", completer.calls)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.MaxRetries)
	}
	if !cfg.FallbackToRegex {
		t.Error("fallback to regex should default to true")
	}
}
