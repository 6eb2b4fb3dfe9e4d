// Package trace is the request-scoped observability layer of the search
// pipeline. A Recorder receives step events, timings, and filter/negation
// decisions from every stage; implementations accumulate them into a Debug
// snapshot, emit them as structured log events, or both.
package trace

import (
	"time"

	"go.uber.org/zap"
)

// maxDescriptionLen bounds product description text carried in traces.
const maxDescriptionLen = 120

// Recorder receives pipeline events for one search request.
type Recorder interface {
	// Step records a pipeline step event.
	Step(name, detail string)
	// Timing records the duration of a pipeline step.
	Timing(step string, d time.Duration)
	// FilterDecision records whether a relational filter was applied and why.
	FilterDecision(filter string, applied bool, detail string)
	// NegationDecision records how a negated term was handled, with a
	// truncated product description when one is involved.
	NegationDecision(term, action, description string)
	// ExcludedProduct records a product excluded by negation filtering.
	ExcludedProduct(productID, name, term string)
	// SemanticQuery records the text that was embedded.
	SemanticQuery(q string)
	// RawSQL records the generated query text.
	RawSQL(sql string)
	// ParsedConstraints records the extracted query components.
	ParsedConstraints(constraints map[string]any)
}

// Truncate bounds description text for trace payloads.
func Truncate(s string) string {
	if len(s) <= maxDescriptionLen {
		return s
	}
	return s[:maxDescriptionLen] + "..."
}

// Nop returns a recorder that discards everything.
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) Step(string, string)                   {}
func (nopRecorder) Timing(string, time.Duration)          {}
func (nopRecorder) FilterDecision(string, bool, string)   {}
func (nopRecorder) NegationDecision(string, string, string) {}
func (nopRecorder) ExcludedProduct(string, string, string)  {}
func (nopRecorder) SemanticQuery(string)                  {}
func (nopRecorder) RawSQL(string)                         {}
func (nopRecorder) ParsedConstraints(map[string]any)      {}

// Multi fans events out to several recorders.
func Multi(recorders ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiRecorder []Recorder

func (m multiRecorder) Step(name, detail string) {
	for _, r := range m {
		r.Step(name, detail)
	}
}

func (m multiRecorder) Timing(step string, d time.Duration) {
	for _, r := range m {
		r.Timing(step, d)
	}
}

func (m multiRecorder) FilterDecision(filter string, applied bool, detail string) {
	for _, r := range m {
		r.FilterDecision(filter, applied, detail)
	}
}

func (m multiRecorder) NegationDecision(term, action, description string) {
	for _, r := range m {
		r.NegationDecision(term, action, description)
	}
}

func (m multiRecorder) ExcludedProduct(productID, name, term string) {
	for _, r := range m {
		r.ExcludedProduct(productID, name, term)
	}
}

func (m multiRecorder) SemanticQuery(q string) {
	for _, r := range m {
		r.SemanticQuery(q)
	}
}

func (m multiRecorder) RawSQL(sql string) {
	for _, r := range m {
		r.RawSQL(sql)
	}
}

func (m multiRecorder) ParsedConstraints(constraints map[string]any) {
	for _, r := range m {
		r.ParsedConstraints(constraints)
	}
}

// NewZapRecorder returns a recorder that emits every event as a structured
// log entry tagged with the request id.
func NewZapRecorder(logger *zap.Logger, requestID string) Recorder {
	return &zapRecorder{logger: logger.With(zap.String("request_id", requestID))}
}

type zapRecorder struct {
	logger *zap.Logger
}

func (z *zapRecorder) Step(name, detail string) {
	z.logger.Debug("pipeline step", zap.String("step", name), zap.String("detail", detail))
}

func (z *zapRecorder) Timing(step string, d time.Duration) {
	z.logger.Debug("step timing", zap.String("step", step), zap.Duration("took", d))
}

func (z *zapRecorder) FilterDecision(filter string, applied bool, detail string) {
	z.logger.Debug("filter decision",
		zap.String("filter", filter), zap.Bool("applied", applied), zap.String("detail", detail))
}

func (z *zapRecorder) NegationDecision(term, action, description string) {
	z.logger.Debug("negation decision",
		zap.String("term", term), zap.String("action", action),
		zap.String("description", Truncate(description)))
}

func (z *zapRecorder) ExcludedProduct(productID, name, term string) {
	z.logger.Debug("product excluded",
		zap.String("product_id", productID), zap.String("name", name), zap.String("term", term))
}

func (z *zapRecorder) SemanticQuery(q string) {
	z.logger.Debug("semantic query", zap.String("query", q))
}

func (z *zapRecorder) RawSQL(sql string) {
	z.logger.Debug("search sql", zap.String("sql", sql))
}

func (z *zapRecorder) ParsedConstraints(constraints map[string]any) {
	z.logger.Debug("parsed constraints", zap.Any("constraints", constraints))
}
