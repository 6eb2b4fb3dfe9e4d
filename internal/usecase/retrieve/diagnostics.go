package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/trace"
)

// requiredColumns are the columns the search query depends on.
var requiredColumns = []string{
	"id", "name", "description", "price", "stock_level", "is_active", "embedding",
}

// SchemaReport is the outcome of a schema validation pass.
type SchemaReport struct {
	OK              bool     `json:"ok"`
	MissingColumns  []string `json:"missing_columns,omitempty"`
	VectorExtension bool     `json:"vector_extension"`
}

// IndexReport is the outcome of an index inspection pass.
type IndexReport struct {
	HasANNIndex     bool     `json:"has_ann_index"`
	Indexes         []string `json:"indexes"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// PlanReport is the outcome of an execution-plan analysis pass.
type PlanReport struct {
	SequentialScan  bool     `json:"sequential_scan"`
	IndexesUsed     []string `json:"indexes_used,omitempty"`
	ExecutionTimeMs float64  `json:"execution_time_ms"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ValidateSchema confirms the required columns and the vector extension
// exist. Read-only; never required for the search path.
func (r *Retriever) ValidateSchema(ctx context.Context) (SchemaReport, error) {
	columns, err := r.store.TableColumns(ctx, r.cfg.Table)
	if err != nil {
		return SchemaReport{}, fmt.Errorf("inspect table %s: %w", r.cfg.Table, err)
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)

	hasVector, err := r.store.HasVectorExtension(ctx)
	if err != nil {
		return SchemaReport{}, fmt.Errorf("check vector extension: %w", err)
	}

	return SchemaReport{
		OK:              len(missing) == 0 && hasVector,
		MissingColumns:  missing,
		VectorExtension: hasVector,
	}, nil
}

// InspectIndexes detects an approximate-nearest-neighbor index on the
// embedding column and emits prioritized recommendations when absent.
func (r *Retriever) InspectIndexes(ctx context.Context) (IndexReport, error) {
	defs, err := r.store.IndexDefinitions(ctx, r.cfg.Table)
	if err != nil {
		return IndexReport{}, fmt.Errorf("inspect indexes on %s: %w", r.cfg.Table, err)
	}

	report := IndexReport{Indexes: make([]string, 0, len(defs))}
	for _, def := range defs {
		report.Indexes = append(report.Indexes, def.Name)
		lower := strings.ToLower(def.Definition)
		if strings.Contains(lower, "hnsw") || strings.Contains(lower, "ivfflat") {
			report.HasANNIndex = true
		}
	}

	if !report.HasANNIndex {
		report.Recommendations = []string{
			fmt.Sprintf("CREATE INDEX ON %s USING hnsw (embedding vector_cosine_ops)", r.cfg.Table),
			fmt.Sprintf("CREATE INDEX ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)", r.cfg.Table),
			fmt.Sprintf("CREATE INDEX ON %s (is_active) WHERE is_active = TRUE", r.cfg.Table),
		}
	}
	return report, nil
}

// AnalyzePlan embeds the query, runs the search under EXPLAIN ANALYZE, and
// surfaces sequential scans, index usage, and timing.
func (r *Retriever) AnalyzePlan(
	ctx context.Context, semanticQuery string, filters query.FilterParams, limit int,
) (PlanReport, error) {
	embResult, err := r.embedder.Embed(ctx, semanticQuery)
	if err != nil {
		return PlanReport{}, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}

	q := buildSearchQuery(r.cfg.Table, embResult.Embedding, filters, limit, trace.Nop())
	planJSON, err := r.store.ExplainAnalyze(ctx, q.sql, q.args)
	if err != nil {
		return PlanReport{}, fmt.Errorf("explain search query: %w", err)
	}

	report, err := parsePlan(planJSON)
	if err != nil {
		return PlanReport{}, fmt.Errorf("parse execution plan: %w", err)
	}

	if report.SequentialScan {
		report.Recommendations = append(report.Recommendations,
			"sequential scan detected; add an ANN index on the embedding column")
	}
	if len(report.IndexesUsed) == 0 && !report.SequentialScan {
		report.Recommendations = append(report.Recommendations,
			"no index usage reported; verify the planner sees current statistics (ANALYZE)")
	}

	r.logger.Debug("execution plan analyzed",
		zap.Bool("sequential_scan", report.SequentialScan),
		zap.Float64("execution_time_ms", report.ExecutionTimeMs),
	)
	return report, nil
}

// parsePlan walks the EXPLAIN (FORMAT JSON) output for node types and timing.
func parsePlan(planJSON []byte) (PlanReport, error) {
	var parsed []struct {
		Plan            map[string]any `json:"Plan"`
		ExecutionTime   float64        `json:"Execution Time"`
		PlanningTime    float64        `json:"Planning Time"`
	}
	if err := json.Unmarshal(planJSON, &parsed); err != nil {
		return PlanReport{}, err
	}
	if len(parsed) == 0 {
		return PlanReport{}, fmt.Errorf("empty plan")
	}

	report := PlanReport{ExecutionTimeMs: parsed[0].ExecutionTime}
	walkPlanNode(parsed[0].Plan, &report)
	sort.Strings(report.IndexesUsed)
	return report, nil
}

func walkPlanNode(node map[string]any, report *PlanReport) {
	if node == nil {
		return
	}
	if nodeType, _ := node["Node Type"].(string); nodeType == "Seq Scan" {
		report.SequentialScan = true
	}
	if indexName, _ := node["Index Name"].(string); indexName != "" {
		report.IndexesUsed = append(report.IndexesUsed, indexName)
	}
	children, _ := node["Plans"].([]any)
	for _, child := range children {
		if m, ok := child.(map[string]any); ok {
			walkPlanNode(m, report)
		}
	}
}
