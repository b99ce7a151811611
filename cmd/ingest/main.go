package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"ai-ops-copilot-be/internal/config"
	"ai-ops-copilot-be/pkg/embedding"
	"ai-ops-copilot-be/pkg/rag/retriever"
	"ai-ops-copilot-be/pkg/rag/store"
)

// Standalone ingestion run: load the documents directory, chunk and embed it,
// then print the report and a sample query so the corpus can be sanity-checked
// without starting the server.
func main() {
	query := flag.String("query", "", "optional query to run against the ingested corpus")
	k := flag.Int("k", 5, "number of results for the sample query")
	flag.Parse()

	cfg := config.Load()

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	} else {
		provider = embedding.NewLocalProvider()
	}

	engine, err := retriever.NewEngine(
		cfg.Knowledge.DocumentsDir,
		cfg.Knowledge.ChunkSize,
		cfg.Knowledge.ChunkOverlap,
		store.NewMemoryStore(provider),
	)
	if err != nil {
		log.Fatalf("failed to build retrieval engine: %v", err)
	}

	ctx := context.Background()
	report, err := engine.Ingest(ctx, cfg.Knowledge.Namespace)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	fmt.Printf("status:           %s\n", report.Status)
	fmt.Printf("documents loaded: %d\n", report.DocumentsLoaded)
	fmt.Printf("chunks created:   %d\n", report.ChunksCreated)
	fmt.Printf("chunks stored:    %d\n", report.ChunksStored)

	if *query == "" {
		return
	}

	results, err := engine.Retrieve(ctx, *query, *k, cfg.Knowledge.MinScore, cfg.Knowledge.Namespace)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Printf("\nresults for %q:\n", *query)
	for _, r := range results {
		fmt.Printf("  %s\n", r.Citation())
	}
}
