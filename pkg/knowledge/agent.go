// Package knowledge retrieves grounded context for a ticket. It is
// retrieval only: it never summarizes, decides or generates text, and an
// empty result set is a valid answer.
package knowledge

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"ai-ops-copilot-be/pkg/rag/retriever"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
	"ai-ops-copilot-be/pkg/triage"
)

const stageType = "knowledge"

// RetrievedDocument is the citation-bearing record attached to workflow
// state for each retrieved chunk.
type RetrievedDocument struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Source   string         `json:"source"`
	Filename string         `json:"filename"`
	DocType  string         `json:"doc_type"`
	ChunkID  string         `json:"chunk_id"`
	Citation string         `json:"citation"`
	Metadata map[string]any `json:"metadata"`
}

// Result carries the retrieved documents plus a pre-formatted context block
// downstream stages can surface to humans.
type Result struct {
	Documents     []RetrievedDocument `json:"documents"`
	DocumentCount int                 `json:"document_count"`
	Context       string              `json:"context"`
	QueriesUsed   []string            `json:"queries_used"`
}

// Agent queries the retrieval engine with ticket-derived queries and scores
// its own confidence in the retrieval quality.
type Agent struct {
	engine                 *retriever.Engine
	maxDocuments           int
	minRelevanceScore      float64
	lowConfidenceThreshold float64
	namespace              string
}

func NewAgent(engine *retriever.Engine, maxDocuments int, minRelevanceScore float64, namespace string) *Agent {
	if maxDocuments <= 0 {
		maxDocuments = 5
	}
	return &Agent{
		engine:                 engine,
		maxDocuments:           maxDocuments,
		minRelevanceScore:      minRelevanceScore,
		lowConfidenceThreshold: 0.3,
		namespace:              namespace,
	}
}

// Retrieve gathers relevant documents for the ticket. Triage output is
// optional; when present its keywords and summary widen the query set.
func (a *Agent) Retrieve(ctx context.Context, t ticket.Ticket, triageOut *triage.Output) *stage.Output[Result] {
	start := time.Now()

	tq := retriever.TicketQuery{
		Subject: t.Subject,
		Body:    t.Body,
	}
	if triageOut != nil {
		tq.Keywords = triageOut.Keywords
		tq.Summary = triageOut.OneLineSummary
	}

	results, err := a.engine.RetrieveForTicket(ctx, tq, a.maxDocuments, a.minRelevanceScore, a.namespace)
	if err != nil {
		out := stage.NewError[Result](stageType, fmt.Sprintf("retrieval failed: %v", err))
		out.ProcessingTimeMs = time.Since(start).Milliseconds()
		return out
	}

	documents := make([]RetrievedDocument, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		documents = append(documents, RetrievedDocument{
			Content:  r.Content,
			Score:    r.Score,
			Source:   r.Source,
			Filename: r.Filename,
			DocType:  r.DocType,
			ChunkID:  r.ChunkID,
			Citation: r.Citation(),
			Metadata: r.Metadata,
		})
		sources = append(sources, r.Filename)
	}

	confidence := a.calculateConfidence(results)

	result := &Result{
		Documents:     documents,
		DocumentCount: len(documents),
		Context:       formatContext(results),
		QueriesUsed:   queriesUsed(t, triageOut),
	}

	out := stage.New(stageType, result, confidence, buildReasoning(results)).WithSources(sources)
	if len(documents) == 0 {
		out.WithReview("No relevant documents found for this ticket")
	} else if confidence < a.lowConfidenceThreshold {
		out.WithReview(fmt.Sprintf("Low retrieval confidence (%.2f)", confidence))
	}
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	return out
}

// calculateConfidence blends best-match quality, overall relevance and
// coverage: 40% top score, 40% average score, 20% document count.
func (a *Agent) calculateConfidence(results []retriever.RetrievalResult) float64 {
	if len(results) == 0 {
		return 0.0
	}

	topScore := results[0].Score
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	avgScore := sum / float64(len(results))
	countFactor := math.Min(float64(len(results))/float64(a.maxDocuments), 1.0)

	confidence := 0.4*topScore + 0.4*avgScore + 0.2*countFactor
	return math.Round(confidence*1000) / 1000
}

func formatContext(results []retriever.RetrievalResult) string {
	if len(results) == 0 {
		return "No relevant documents found."
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "--- Document %d %s ---\n%s\n\n", i+1, r.Citation(), r.Content)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func buildReasoning(results []retriever.RetrievalResult) string {
	if len(results) == 0 {
		return "No documents matched the search queries."
	}

	seen := make(map[string]bool)
	var sources []string
	for _, r := range results {
		if !seen[r.Filename] {
			seen[r.Filename] = true
			sources = append(sources, r.Filename)
		}
	}

	display := sources
	suffix := ""
	if len(display) > 3 {
		display = display[:3]
		suffix = "..."
	}

	return fmt.Sprintf("Retrieved %d documents from %d sources. Top relevance score: %.2f. Sources: %s%s",
		len(results), len(sources), results[0].Score, strings.Join(display, ", "), suffix)
}

func queriesUsed(t ticket.Ticket, triageOut *triage.Output) []string {
	var queries []string
	if t.Subject != "" {
		queries = append(queries, "subject: "+excerpt(t.Subject, 50))
	}
	if t.Body != "" {
		queries = append(queries, "body excerpt: "+excerpt(t.Body, 50))
	}
	if triageOut != nil && len(triageOut.Keywords) > 0 {
		keywords := triageOut.Keywords
		if len(keywords) > 5 {
			keywords = keywords[:5]
		}
		queries = append(queries, "keywords: "+strings.Join(keywords, ", "))
	}
	return queries
}

// excerpt cuts s to n bytes, marking the cut with an ellipsis only when
// something was actually removed.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
