package store

import (
	"context"
	"fmt"
	"testing"

	"ai-ops-copilot-be/pkg/embedding"
	"ai-ops-copilot-be/pkg/rag/chunk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(embedding.NewLocalProvider())
}

func makeChunk(id, content string) chunk.Chunk {
	return chunk.Chunk{
		ChunkID:  id,
		Content:  content,
		Source:   "data/documents/" + id + ".md",
		Filename: id + ".md",
		DocType:  "general",
		Metadata: map[string]any{"chunk_index": 0},
	}
}

func TestAddAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.AddChunks(ctx, []chunk.Chunk{
		makeChunk("doc-a", "webhook delivery timeout configuration and retry settings"),
		makeChunk("doc-b", "database connection pool exhaustion troubleshooting"),
		makeChunk("doc-c", "completely unrelated billing invoice content"),
	}, "")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	results, err := s.Search(ctx, "webhook delivery timeout", 10, "", 0.0)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Most relevant chunk first, scores descending.
	assert.Equal(t, "doc-a", results[0].ChunkID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchMinScoreFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChunks(ctx, []chunk.Chunk{
		makeChunk("match", "kafka consumer lag alert runbook"),
		makeChunk("noise", "office plant watering schedule"),
	}, "")
	require.NoError(t, err)

	strict, err := s.Search(ctx, "kafka consumer lag", 10, "", 0.5)
	require.NoError(t, err)
	for _, r := range strict {
		assert.GreaterOrEqual(t, r.Score, 0.5)
	}

	// An impossible threshold yields an empty result, not an error.
	none, err := s.Search(ctx, "kafka consumer lag", 10, "", 1.01)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchTruncatesToK(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var chunks []chunk.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, makeChunk(fmt.Sprintf("doc-%02d", i), fmt.Sprintf("service restart procedure step %d", i)))
	}
	_, err := s.AddChunks(ctx, chunks, "")
	require.NoError(t, err)

	results, err := s.Search(ctx, "service restart procedure", 3, "", 0.0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchEqualScoresKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Identical content hashes to identical embeddings, so all three
	// score the same. IDs are deliberately out of lexical order.
	_, err := s.AddChunks(ctx, []chunk.Chunk{
		makeChunk("z-first", "payment gateway timeout runbook"),
		makeChunk("m-second", "payment gateway timeout runbook"),
		makeChunk("a-third", "payment gateway timeout runbook"),
	}, "")
	require.NoError(t, err)

	results, err := s.Search(ctx, "payment gateway timeout", 10, "", 0.0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "z-first", results[0].ChunkID)
	assert.Equal(t, "m-second", results[1].ChunkID)
	assert.Equal(t, "a-third", results[2].ChunkID)
}

func TestNamespaceIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChunks(ctx, []chunk.Chunk{makeChunk("prod-doc", "incident response playbook")}, "prod")
	require.NoError(t, err)
	_, err = s.AddChunks(ctx, []chunk.Chunk{makeChunk("staging-doc", "incident response playbook")}, "staging")
	require.NoError(t, err)

	prod, err := s.Search(ctx, "incident response", 10, "prod", 0.0)
	require.NoError(t, err)
	require.Len(t, prod, 1)
	assert.Equal(t, "prod-doc", prod[0].ChunkID)

	// Unknown namespace finds nothing.
	empty, err := s.Search(ctx, "incident response", 10, "missing", 0.0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChunks(ctx, []chunk.Chunk{
		makeChunk("keep", "retained content"),
		makeChunk("drop", "removed content"),
	}, "")
	require.NoError(t, err)

	deleted, err := s.DeleteChunks(ctx, []string{"drop", "never-existed"}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, s.Stats().TotalChunks)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChunks(ctx, []chunk.Chunk{makeChunk("a", "one")}, "ns1")
	require.NoError(t, err)
	_, err = s.AddChunks(ctx, []chunk.Chunk{makeChunk("b", "two")}, "ns2")
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, "ns1"))
	assert.Equal(t, 1, s.Stats().TotalChunks)

	require.NoError(t, s.Clear(ctx, ""))
	assert.Equal(t, 0, s.Stats().TotalChunks)
}

func TestStatsTracksSearches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddChunks(ctx, []chunk.Chunk{makeChunk("a", "content")}, "")
	require.NoError(t, err)

	_, err = s.Search(ctx, "content", 1, "", 0.0)
	require.NoError(t, err)
	_, err = s.Search(ctx, "content", 1, "", 0.0)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalSearches)
	assert.Equal(t, "local-hash-tf", stats.EmbeddingModel)
	assert.Equal(t, 256, stats.EmbeddingDimension)
}

func TestCosineSimilarity(t *testing.T) {
	identical, err := cosineSimilarity([]float64{1, 0, 0}, []float64{1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, identical, 1e-9)

	orthogonal, err := cosineSimilarity([]float64{1, 0, 0}, []float64{0, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, orthogonal, 1e-9)

	zero, err := cosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Zero(t, zero)

	_, err = cosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	assert.Error(t, err)
}
