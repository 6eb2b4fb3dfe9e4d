// Package rewrite turns a raw shopper query into structured query components,
// using LLM extraction with a deterministic regex fallback.
package rewrite

import (
	"context"

	"github.com/kailas-cloud/storefind/internal/domain/query"
)

// CompletionRequest holds the parameters of one completion call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer generates a text completion. Implementations may time out or
// return text that does not parse.
type Completer interface {
	Generate(ctx context.Context, req CompletionRequest) (string, error)
}

// Source identifies which extraction strategy produced an outcome.
type Source string

const (
	// SourceLLM marks components extracted by the completion model.
	SourceLLM Source = "llm"
	// SourceFallback marks components extracted by the regex fallback.
	SourceFallback Source = "fallback"
)

// Outcome is a successful extraction together with its provenance.
type Outcome struct {
	Components query.Components
	Source     Source
}

// result is the tagged success/failure variant of one extraction attempt.
// Failure carries the reason so the caller can log it before falling back.
type result struct {
	ok         bool
	components query.Components
	reason     string
}

func success(c query.Components) result { return result{ok: true, components: c} }

func failure(reason string) result { return result{reason: reason} }
