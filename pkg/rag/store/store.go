package store

import (
	"context"

	"ai-ops-copilot-be/pkg/rag/chunk"
)

// SearchResult is one retrieved chunk with its similarity score. The score is
// cosine similarity, higher is better.
type SearchResult struct {
	ChunkID  string         `json:"chunk_id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Source   string         `json:"source"`
	Filename string         `json:"filename"`
	DocType  string         `json:"doc_type"`
	Metadata map[string]any `json:"metadata"`
}

// Stats describes the current state of a vector store.
type Stats struct {
	TotalChunks        int     `json:"total_chunks"`
	TotalSearches      int     `json:"total_searches"`
	AvgSearchTimeMs    float64 `json:"avg_search_time_ms"`
	EmbeddingModel     string  `json:"embedding_model"`
	EmbeddingDimension int     `json:"embedding_dimension"`
}

// VectorStore holds embedded chunks and answers similarity queries. The
// in-memory implementation is the default; the interface leaves room for a
// persistent backend later.
type VectorStore interface {
	AddChunks(ctx context.Context, chunks []chunk.Chunk, namespace string) ([]string, error)
	Search(ctx context.Context, query string, k int, namespace string, minScore float64) ([]SearchResult, error)
	DeleteChunks(ctx context.Context, chunkIDs []string, namespace string) (int, error)
	Clear(ctx context.Context, namespace string) error
	Stats() Stats
}
