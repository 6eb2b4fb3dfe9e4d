package embcache

import (
	"context"
	"time"

	"github.com/kailas-cloud/storefind/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error

	setKeys []string
	setVals [][]byte
	setTTLs []time.Duration
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setKeys = append(m.setKeys, key)
	m.setVals = append(m.setVals, value)
	m.setTTLs = append(m.setTTLs, ttl)
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}
