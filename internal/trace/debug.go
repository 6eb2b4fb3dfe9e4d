package trace

import (
	"sync"
	"time"
)

// Debug accumulates per-request pipeline events into a snapshot that can be
// returned alongside search results. It lives for exactly one request and is
// discarded at response time unless the caller keeps it.
type Debug struct {
	mu sync.Mutex

	semanticQuery     string
	rawSQL            string
	parsedConstraints map[string]any
	executionTimes    map[string]float64
	filterDecisions   []FilterDecision
	negationDecisions []NegationDecision
	excludedProducts  []ExcludedProduct
	pipelineSteps     []StepEvent
}

// FilterDecision records whether one relational filter was applied.
type FilterDecision struct {
	Filter  string `json:"filter"`
	Applied bool   `json:"applied"`
	Detail  string `json:"detail"`
}

// NegationDecision records how one negated term was handled.
type NegationDecision struct {
	Term        string `json:"term"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// ExcludedProduct records a product removed by negation filtering.
type ExcludedProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Term      string `json:"term"`
}

// StepEvent records one pipeline step.
type StepEvent struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// Snapshot is the serializable view of a Debug accumulator.
type Snapshot struct {
	SemanticQuery     string             `json:"semantic_query"`
	RawSQL            string             `json:"raw_sql"`
	ParsedConstraints map[string]any     `json:"parsed_constraints"`
	ExecutionTimes    map[string]float64 `json:"execution_times"`
	FilterDecisions   []FilterDecision   `json:"filter_decisions"`
	NegationDecisions []NegationDecision `json:"negation_decisions"`
	ExcludedProducts  []ExcludedProduct  `json:"excluded_products"`
	PipelineSteps     []StepEvent        `json:"pipeline_steps"`
}

// NewDebug creates an empty request-scoped accumulator.
func NewDebug() *Debug {
	return &Debug{
		parsedConstraints: map[string]any{},
		executionTimes:    map[string]float64{},
	}
}

var _ Recorder = (*Debug)(nil)

// Step implements Recorder.
func (d *Debug) Step(name, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pipelineSteps = append(d.pipelineSteps, StepEvent{Name: name, Detail: detail})
}

// Timing implements Recorder. Durations are stored as milliseconds.
func (d *Debug) Timing(step string, took time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executionTimes[step] = float64(took.Microseconds()) / 1000.0
}

// FilterDecision implements Recorder.
func (d *Debug) FilterDecision(filter string, applied bool, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filterDecisions = append(d.filterDecisions, FilterDecision{
		Filter: filter, Applied: applied, Detail: detail,
	})
}

// NegationDecision implements Recorder. The description is truncated.
func (d *Debug) NegationDecision(term, action, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.negationDecisions = append(d.negationDecisions, NegationDecision{
		Term: term, Action: action, Description: Truncate(description),
	})
}

// ExcludedProduct implements Recorder.
func (d *Debug) ExcludedProduct(productID, name, term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.excludedProducts = append(d.excludedProducts, ExcludedProduct{
		ProductID: productID, Name: name, Term: term,
	})
}

// SemanticQuery implements Recorder.
func (d *Debug) SemanticQuery(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.semanticQuery = q
}

// RawSQL implements Recorder.
func (d *Debug) RawSQL(sql string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rawSQL = sql
}

// ParsedConstraints implements Recorder.
func (d *Debug) ParsedConstraints(constraints map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range constraints {
		d.parsedConstraints[k] = v
	}
}

// Snapshot returns a copy of the accumulated state.
func (d *Debug) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	constraints := make(map[string]any, len(d.parsedConstraints))
	for k, v := range d.parsedConstraints {
		constraints[k] = v
	}
	times := make(map[string]float64, len(d.executionTimes))
	for k, v := range d.executionTimes {
		times[k] = v
	}

	return Snapshot{
		SemanticQuery:     d.semanticQuery,
		RawSQL:            d.rawSQL,
		ParsedConstraints: constraints,
		ExecutionTimes:    times,
		FilterDecisions:   append([]FilterDecision(nil), d.filterDecisions...),
		NegationDecisions: append([]NegationDecision(nil), d.negationDecisions...),
		ExcludedProducts:  append([]ExcludedProduct(nil), d.excludedProducts...),
		PipelineSteps:     append([]StepEvent(nil), d.pipelineSteps...),
	}
}
