package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ai-ops-copilot-be/pkg/rag/chunk"
	"ai-ops-copilot-be/pkg/rag/ingest"
	"ai-ops-copilot-be/pkg/rag/store"
)

// RetrievalResult is one retrieved chunk with everything needed to cite it.
// Results never contain generated text, only stored document content.
type RetrievalResult struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Source   string         `json:"source"`
	Filename string         `json:"filename"`
	DocType  string         `json:"doc_type"`
	ChunkID  string         `json:"chunk_id"`
	Metadata map[string]any `json:"metadata"`
}

// Citation formats the result as a human-readable reference, e.g.
// "[api_authentication.md] (chunk 3, score: 0.87)".
func (r RetrievalResult) Citation() string {
	chunkNum := "?"
	if idx, ok := r.Metadata["chunk_index"]; ok {
		chunkNum = fmt.Sprintf("%v", idx)
	}
	return fmt.Sprintf("[%s] (chunk %s, score: %.2f)", r.Filename, chunkNum, r.Score)
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Status          string `json:"status"`
	DocumentsLoaded int    `json:"documents_loaded"`
	ChunksCreated   int    `json:"chunks_created"`
	ChunksStored    int    `json:"chunks_stored"`
}

// EngineStats exposes retrieval pipeline counters for observability.
type EngineStats struct {
	DocumentsIngested  int         `json:"documents_ingested"`
	ChunksStored       int         `json:"chunks_stored"`
	TotalRetrievals    int         `json:"total_retrievals"`
	AvgRetrievalTimeMs float64     `json:"avg_retrieval_time_ms"`
	IsInitialized      bool        `json:"is_initialized"`
	StoreStats         store.Stats `json:"store_stats"`
}

// TicketQuery carries the ticket fields and triage hints used to build
// retrieval queries.
type TicketQuery struct {
	Subject  string
	Body     string
	Keywords []string
	Summary  string
}

// Engine wires loading, chunking, embedding and search into one retrieval
// pipeline. It only retrieves stored facts; generation happens downstream.
type Engine struct {
	loader  *ingest.Loader
	chunker *chunk.Chunker
	store   store.VectorStore

	mu                sync.Mutex
	initialized       bool
	documentsIngested int
	chunksStored      int
	totalRetrievals   int
}

func NewEngine(documentsDir string, chunkSize, chunkOverlap int, vectorStore store.VectorStore) (*Engine, error) {
	chunker, err := chunk.NewChunker(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Engine{
		loader:  ingest.NewLoader(documentsDir),
		chunker: chunker,
		store:   vectorStore,
	}, nil
}

// Ingest loads every document from the documents directory, chunks it and
// stores the embedded chunks. Call at startup or whenever documents change.
func (e *Engine) Ingest(ctx context.Context, namespace string) (*IngestReport, error) {
	documents, err := e.loader.Load()
	if err != nil {
		return nil, err
	}

	if len(documents) == 0 {
		return &IngestReport{Status: "no_documents"}, nil
	}

	chunks := e.chunker.ChunkDocuments(documents)
	chunkIDs, err := e.store.AddChunks(ctx, chunks, namespace)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.documentsIngested = len(documents)
	e.chunksStored = len(chunkIDs)
	e.initialized = true
	e.mu.Unlock()

	return &IngestReport{
		Status:          "success",
		DocumentsLoaded: len(documents),
		ChunksCreated:   len(chunks),
		ChunksStored:    len(chunkIDs),
	}, nil
}

// Retrieve returns the best matching chunks for a query, highest score
// first. An empty result is not an error.
func (e *Engine) Retrieve(ctx context.Context, query string, k int, minScore float64, namespace string) ([]RetrievalResult, error) {
	searchResults, err := e.store.Search(ctx, query, k, namespace, minScore)
	if err != nil {
		return nil, err
	}

	results := make([]RetrievalResult, 0, len(searchResults))
	for _, sr := range searchResults {
		results = append(results, RetrievalResult{
			Content:  sr.Content,
			Score:    sr.Score,
			Source:   sr.Source,
			Filename: sr.Filename,
			DocType:  sr.DocType,
			ChunkID:  sr.ChunkID,
			Metadata: sr.Metadata,
		})
	}

	e.mu.Lock()
	e.totalRetrievals++
	e.mu.Unlock()

	return results, nil
}

// RetrieveForTicket runs several queries built from the ticket and its
// triage hints, then merges results keeping the highest score per chunk.
func (e *Engine) RetrieveForTicket(ctx context.Context, tq TicketQuery, k int, minScore float64, namespace string) ([]RetrievalResult, error) {
	var queries []string

	if tq.Subject != "" {
		queries = append(queries, tq.Subject)
	}
	if tq.Body != "" {
		body := tq.Body
		if len(body) > 200 {
			body = body[:200]
		}
		queries = append(queries, body)
	}
	if len(tq.Keywords) > 0 {
		queries = append(queries, strings.Join(tq.Keywords, " "))
	}
	if tq.Summary != "" {
		queries = append(queries, tq.Summary)
	}

	merged := make(map[string]RetrievalResult)
	for _, query := range queries {
		if strings.TrimSpace(query) == "" {
			continue
		}
		results, err := e.Retrieve(ctx, query, k, minScore, namespace)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if existing, ok := merged[r.ChunkID]; !ok || r.Score > existing.Score {
				merged[r.ChunkID] = r
			}
		}
	}

	sorted := make([]RetrievalResult, 0, len(merged))
	for _, r := range merged {
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ChunkID < sorted[j].ChunkID
	})

	if k > 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted, nil
}

func (e *Engine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	storeStats := e.store.Stats()
	return EngineStats{
		DocumentsIngested:  e.documentsIngested,
		ChunksStored:       e.chunksStored,
		TotalRetrievals:    e.totalRetrievals,
		AvgRetrievalTimeMs: storeStats.AvgSearchTimeMs,
		IsInitialized:      e.initialized,
		StoreStats:         storeStats,
	}
}

// Clear removes stored chunks. With an empty namespace everything is
// removed and the engine returns to uninitialized.
func (e *Engine) Clear(ctx context.Context, namespace string) error {
	if err := e.store.Clear(ctx, namespace); err != nil {
		return err
	}
	e.mu.Lock()
	e.initialized = false
	e.chunksStored = 0
	e.mu.Unlock()
	return nil
}
