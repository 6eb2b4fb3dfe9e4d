// Package postgres implements the datastore contract on pgx. Every logical
// search acquires one pooled connection, issues a short bounded sequence of
// statements (optional tuning, then the query), and releases the connection
// on all exit paths.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
)

// Config holds connection and tuning settings.
type Config struct {
	DSN      string
	MaxConns int32
	// Tuning holds best-effort session hints applied before each search
	// query. Failures are logged and swallowed.
	Tuning TuningConfig
}

// TuningConfig holds the optional session-level performance hints.
type TuningConfig struct {
	Enabled         bool
	WorkMem         string // e.g. "64MB"
	ParallelWorkers int
}

// Store implements retrieve.Store on a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	cfg    Config
	logger *zap.Logger
}

var _ retrieve.Store = (*Store)(nil)

// NewStore connects a pooled store.
func NewStore(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Store{pool: pool, cfg: cfg, logger: logger}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// QueryProducts runs the hybrid search query on one acquired connection.
// Failures wrap truncated SQL and the parameter count, never parameter values.
func (s *Store) QueryProducts(ctx context.Context, sql string, args []any) ([]retrieve.Row, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, domain.NewQueryExecutionError(sql, len(args), fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	s.applyTuningHints(ctx, conn)

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.NewQueryExecutionError(sql, len(args), err)
	}
	defer rows.Close()

	var out []retrieve.Row
	for rows.Next() {
		var row retrieve.Row
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Description,
			&row.Price, &row.StockLevel, &row.Similarity,
		); err != nil {
			return nil, domain.NewQueryExecutionError(sql, len(args), fmt.Errorf("scan row: %w", err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryExecutionError(sql, len(args), err)
	}
	return out, nil
}

// applyTuningHints issues best-effort session settings on the acquired
// connection. Never fatal.
func (s *Store) applyTuningHints(ctx context.Context, conn *pgxpool.Conn) {
	if !s.cfg.Tuning.Enabled {
		return
	}
	hints := []string{}
	if s.cfg.Tuning.WorkMem != "" {
		hints = append(hints, fmt.Sprintf("SET work_mem = '%s'", s.cfg.Tuning.WorkMem))
	}
	if s.cfg.Tuning.ParallelWorkers > 0 {
		hints = append(hints,
			fmt.Sprintf("SET max_parallel_workers_per_gather = %d", s.cfg.Tuning.ParallelWorkers))
	}
	for _, hint := range hints {
		if _, err := conn.Exec(ctx, hint); err != nil {
			s.logger.Warn("session tuning hint failed", zap.String("hint", hint), zap.Error(err))
		}
	}
}

// TableColumns returns column name -> data type for a table.
func (s *Store) TableColumns(ctx context.Context, table string) (map[string]string, error) {
	const q = `SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = $1`

	rows, err := s.pool.Query(ctx, q, table)
	if err != nil {
		return nil, domain.NewQueryExecutionError(q, 1, err)
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, domain.NewQueryExecutionError(q, 1, fmt.Errorf("scan row: %w", err))
		}
		columns[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryExecutionError(q, 1, err)
	}
	return columns, nil
}

// HasVectorExtension reports whether the vector extension is installed.
func (s *Store) HasVectorExtension(ctx context.Context) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`

	var exists bool
	if err := s.pool.QueryRow(ctx, q).Scan(&exists); err != nil {
		return false, domain.NewQueryExecutionError(q, 0, err)
	}
	return exists, nil
}

// IndexDefinitions lists the indexes on a table.
func (s *Store) IndexDefinitions(ctx context.Context, table string) ([]retrieve.IndexDef, error) {
	const q = `SELECT indexname, indexdef
FROM pg_indexes
WHERE schemaname = 'public' AND tablename = $1`

	rows, err := s.pool.Query(ctx, q, table)
	if err != nil {
		return nil, domain.NewQueryExecutionError(q, 1, err)
	}
	defer rows.Close()

	var defs []retrieve.IndexDef
	for rows.Next() {
		var def retrieve.IndexDef
		if err := rows.Scan(&def.Name, &def.Definition); err != nil {
			return nil, domain.NewQueryExecutionError(q, 1, fmt.Errorf("scan row: %w", err))
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryExecutionError(q, 1, err)
	}
	return defs, nil
}

// ExplainAnalyze returns the JSON execution plan for a query.
func (s *Store) ExplainAnalyze(ctx context.Context, sql string, args []any) ([]byte, error) {
	explainSQL := "EXPLAIN (ANALYZE, FORMAT JSON) " + sql

	var plan []byte
	err := s.pool.QueryRow(ctx, explainSQL, args...).Scan(&plan)
	if err != nil && err != pgx.ErrNoRows {
		return nil, domain.NewQueryExecutionError(explainSQL, len(args), err)
	}
	return plan, nil
}
