package retrieve

import (
	"context"

	"github.com/kailas-cloud/storefind/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	rows       []Row
	queryErr   error
	lastSQL    string
	lastArgs   []any
	columns    map[string]string
	hasVector  bool
	indexDefs  []IndexDef
	plan       []byte
	explainErr error
}

func (m *mockStore) QueryProducts(_ context.Context, sql string, args []any) ([]Row, error) {
	m.lastSQL = sql
	m.lastArgs = args
	return m.rows, m.queryErr
}

func (m *mockStore) TableColumns(_ context.Context, _ string) (map[string]string, error) {
	return m.columns, nil
}

func (m *mockStore) HasVectorExtension(_ context.Context) (bool, error) {
	return m.hasVector, nil
}

func (m *mockStore) IndexDefinitions(_ context.Context, _ string) ([]IndexDef, error) {
	return m.indexDefs, nil
}

func (m *mockStore) ExplainAnalyze(_ context.Context, _ string, _ []any) ([]byte, error) {
	return m.plan, m.explainErr
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}
