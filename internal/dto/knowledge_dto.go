package dto

type KnowledgeSearchRequest struct {
	Query    string  `json:"query" validate:"required"`
	K        int     `json:"k" validate:"omitempty,min=1,max=50"`
	MinScore float64 `json:"min_score" validate:"omitempty,min=0,max=1"`
}

type KnowledgeSearchResult struct {
	ChunkID  string  `json:"chunk_id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
	Filename string  `json:"filename"`
	DocType  string  `json:"doc_type"`
	Citation string  `json:"citation"`
}

type KnowledgeSearchResponse struct {
	Query   string                  `json:"query"`
	Results []KnowledgeSearchResult `json:"results"`
}

type KnowledgeIngestResponse struct {
	Status          string `json:"status"`
	DocumentsLoaded int    `json:"documents_loaded"`
	ChunksCreated   int    `json:"chunks_created"`
	ChunksStored    int    `json:"chunks_stored"`
}

type KnowledgeStatsResponse struct {
	Initialized        bool    `json:"initialized"`
	DocumentsIngested  int     `json:"documents_ingested"`
	TotalChunks        int     `json:"total_chunks"`
	TotalRetrievals    int     `json:"total_retrievals"`
	TotalSearches      int     `json:"total_searches"`
	AvgSearchTimeMs    float64 `json:"avg_search_time_ms"`
	EmbeddingModel     string  `json:"embedding_model"`
	EmbeddingDimension int     `json:"embedding_dimension"`
}
