package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/okekechris/docuchat/internal/core"
)

// HNSW index parameters: construction breadth fixed at table creation,
// search breadth applied per query transaction.
const (
	hnswM              = 16
	hnswEfConstruction = 100
	hnswEfSearch       = 10
)

type Config struct {
	DatabaseURL    string
	EmbedDim       int
	ConnectRetries int
	ConnectBackoff time.Duration
}

// Store is the single shared gateway to the chunk collection. It is
// constructed once at process start; the underlying pool is safe for
// concurrent use, so the store performs no additional locking.
type Store struct {
	db       *sql.DB
	embedder core.EmbeddingProvider
}

var _ core.VectorStore = (*Store)(nil)

// New opens the connection, pings with bounded retries and runs the
// idempotent collection bootstrap. When the store stays unreachable past the
// retry budget it fails with core.ErrStoreUnavailable.
func New(ctx context.Context, cfg Config, embedder core.EmbeddingProvider) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.ConnectRetries <= 0 {
		cfg.ConnectRetries = 5
	}
	if cfg.ConnectBackoff <= 0 {
		cfg.ConnectBackoff = 2 * time.Second
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := pingWithRetry(ctx, db, cfg.ConnectRetries, cfg.ConnectBackoff); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := bootstrap(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap collection: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, retries int, backoff time.Duration) error {
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("VectorStore: connect attempt %d/%d failed: %v", attempt, retries, err)
		if attempt == retries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
}

// bootstrap is the get-or-create of the collection: every statement is
// conditional, so repeated and concurrent calls are safe and never recreate
// an existing collection.
func bootstrap(ctx context.Context, db *sql.DB, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chunks (
				id         TEXT PRIMARY KEY,
				source     TEXT NOT NULL,
				text       TEXT NOT NULL,
				embedding  vector(%d) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, dim),
		`CREATE INDEX IF NOT EXISTS chunks_source_idx ON chunks (source)`,
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks
			USING hnsw (embedding vector_cosine_ops)
			WITH (m = %d, ef_construction = %d)`, hnswM, hnswEfConstruction),
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Add embeds texts in one batch and inserts all rows in a single
// transaction. The three slices must have equal length; an id already in the
// collection fails the insert via the primary key, it is not deduped here.
func (s *Store) Add(ctx context.Context, ids, texts, sources []string) error {
	if len(ids) != len(texts) || len(texts) != len(sources) {
		return fmt.Errorf("mismatched lengths: %d ids, %d texts, %d sources", len(ids), len(texts), len(sources))
	}
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id in batch: %s", id)
		}
		seen[id] = struct{}{}
	}

	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(texts))
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunks (id, source, text, embedding)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range ids {
		if _, err := stmt.ExecContext(ctx, ids[i], sources[i], texts[i], pgvector.NewVector(vecs[i])); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk %s: %w", ids[i], err)
		}
	}
	return tx.Commit()
}

// Query embeds the query text and returns the k nearest chunks by cosine
// distance. Failures, including an empty query, wrap core.ErrQuery.
func (s *Store) Query(ctx context.Context, text string, k int) (*core.SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query text", core.ErrQuery)
	}
	if k <= 0 {
		k = 5
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{text})
	if err != nil || len(vecs) == 0 {
		return nil, fmt.Errorf("%w: embed query: %v", core.ErrQuery, err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrQuery, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", hnswEfSearch)); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrQuery, err)
	}

	const q = `
		SELECT id, text, source, embedding <=> $1 AS distance
		FROM chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := tx.QueryContext(ctx, q, pgvector.NewVector(vecs[0]), k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrQuery, err)
	}
	defer rows.Close()

	res := &core.SearchResult{
		IDs:       [][]string{{}},
		Documents: [][]string{{}},
		Metadatas: [][]core.ChunkMetadata{{}},
		Distances: [][]float64{{}},
	}
	for rows.Next() {
		var (
			id, doc, source string
			distance        float64
		)
		if err := rows.Scan(&id, &doc, &source, &distance); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrQuery, err)
		}
		res.IDs[0] = append(res.IDs[0], id)
		res.Documents[0] = append(res.Documents[0], doc)
		res.Metadatas[0] = append(res.Metadatas[0], core.ChunkMetadata{Source: source})
		res.Distances[0] = append(res.Distances[0], distance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrQuery, err)
	}
	return res, nil
}

// DeleteBySource removes all chunks with an exact source match.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = $1`, source)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) HasSource(ctx context.Context, source string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM chunks WHERE source = $1)`, source).Scan(&exists)
	return exists, err
}

func (s *Store) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM chunks ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *Store) CountBySource(ctx context.Context, source string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM chunks WHERE source = $1`, source).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
