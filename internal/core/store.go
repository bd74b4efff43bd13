package core

import "context"

// ChunkMetadata is the metadata stored alongside every embedded chunk.
// Source is the path of the document the chunk was derived from; deleting a
// document cascades to its chunks via this field.
type ChunkMetadata struct {
	Source string `json:"source"`
}

// SearchResult mirrors the wire shape of the search endpoint: one inner list
// per query text (the service always issues a single query, so the outer
// lists have length one).
type SearchResult struct {
	IDs       [][]string        `json:"ids"`
	Documents [][]string        `json:"documents"`
	Metadatas [][]ChunkMetadata `json:"metadatas"`
	Distances [][]float64       `json:"distances"`
}

// VectorStore abstracts the embedded-chunk collection so higher layers never
// depend on a specific backend.
type VectorStore interface {
	// Add embeds texts and inserts them under the given ids. All three
	// slices must have equal length; ids must not already exist in the
	// collection (duplicates are rejected by the store, not deduped).
	Add(ctx context.Context, ids, texts, sources []string) error

	// Query returns the k nearest chunks for the query text.
	Query(ctx context.Context, text string, k int) (*SearchResult, error)

	// DeleteBySource removes every chunk whose source matches exactly and
	// reports how many were removed.
	DeleteBySource(ctx context.Context, source string) (int64, error)

	HasSource(ctx context.Context, source string) (bool, error)
	ListSources(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountBySource(ctx context.Context, source string) (int64, error)

	Close() error
}
