package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"ai-ops-copilot-be/pkg/embedding"
	"ai-ops-copilot-be/pkg/rag/chunk"
)

// DefaultNamespace receives chunks when no namespace is given.
const DefaultNamespace = "default"

type storedChunk struct {
	chunkID   string
	content   string
	embedding []float64
	source    string
	filename  string
	docType   string
	metadata  map[string]any
}

// MemoryStore is an in-memory VectorStore with linear-scan search. Good for
// collections up to a few thousand chunks; everything is lost on restart.
type MemoryStore struct {
	embedder embedding.Provider

	mu     sync.RWMutex
	chunks map[string]*storedChunk

	// namespaces keeps chunk IDs in insertion order so equal-score search
	// results come back in the order they were stored.
	namespaces map[string][]string

	totalSearches   int
	avgSearchTimeMs float64
}

var _ VectorStore = &MemoryStore{}

func NewMemoryStore(embedder embedding.Provider) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		chunks:   make(map[string]*storedChunk),
		namespaces: map[string][]string{
			DefaultNamespace: {},
		},
	}
}

func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions don't match: %d vs %d", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

func (s *MemoryStore) AddChunks(ctx context.Context, chunks []chunk.Chunk, namespace string) ([]string, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	namespaceIDs := s.namespaces[namespace]
	members := make(map[string]struct{}, len(namespaceIDs))
	for _, id := range namespaceIDs {
		members[id] = struct{}{}
	}

	addedIDs := make([]string, 0, len(chunks))
	for i, c := range chunks {
		s.chunks[c.ChunkID] = &storedChunk{
			chunkID:   c.ChunkID,
			content:   c.Content,
			embedding: embeddings[i],
			source:    c.Source,
			filename:  c.Filename,
			docType:   c.DocType,
			metadata:  c.Metadata,
		}
		if _, ok := members[c.ChunkID]; !ok {
			namespaceIDs = append(namespaceIDs, c.ChunkID)
			members[c.ChunkID] = struct{}{}
		}
		addedIDs = append(addedIDs, c.ChunkID)
	}
	s.namespaces[namespace] = namespaceIDs

	return addedIDs, nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, k int, namespace string, minScore float64) ([]SearchResult, error) {
	start := time.Now()

	if namespace == "" {
		namespace = DefaultNamespace
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		chunk *storedChunk
		score float64
	}

	var candidates []scored
	for _, chunkID := range s.namespaces[namespace] {
		sc, ok := s.chunks[chunkID]
		if !ok {
			continue
		}
		score, err := cosineSimilarity(queryEmbedding, sc.embedding)
		if err != nil {
			return nil, err
		}
		if score >= minScore {
			candidates = append(candidates, scored{chunk: sc, score: score})
		}
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, SearchResult{
			ChunkID:  c.chunk.chunkID,
			Content:  c.chunk.content,
			Score:    c.score,
			Source:   c.chunk.source,
			Filename: c.chunk.filename,
			DocType:  c.chunk.docType,
			Metadata: c.chunk.metadata,
		})
	}

	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
	s.totalSearches++
	s.avgSearchTimeMs += (elapsedMs - s.avgSearchTimeMs) / float64(s.totalSearches)

	return results, nil
}

func (s *MemoryStore) DeleteChunks(_ context.Context, chunkIDs []string, namespace string) (int, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	removed := make(map[string]struct{}, len(chunkIDs))
	for _, chunkID := range chunkIDs {
		if _, ok := s.chunks[chunkID]; ok {
			delete(s.chunks, chunkID)
			removed[chunkID] = struct{}{}
			deleted++
		}
	}

	if len(removed) > 0 {
		kept := s.namespaces[namespace][:0]
		for _, id := range s.namespaces[namespace] {
			if _, ok := removed[id]; !ok {
				kept = append(kept, id)
			}
		}
		s.namespaces[namespace] = kept
	}
	return deleted, nil
}

func (s *MemoryStore) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if namespace == "" {
		s.chunks = make(map[string]*storedChunk)
		s.namespaces = map[string][]string{DefaultNamespace: {}}
		return nil
	}

	for _, chunkID := range s.namespaces[namespace] {
		delete(s.chunks, chunkID)
	}
	s.namespaces[namespace] = nil
	return nil
}

func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		TotalChunks:        len(s.chunks),
		TotalSearches:      s.totalSearches,
		AvgSearchTimeMs:    s.avgSearchTimeMs,
		EmbeddingModel:     s.embedder.ModelName(),
		EmbeddingDimension: s.embedder.Dimension(),
	}
}
