package service

import (
	"context"

	"ai-ops-copilot-be/internal/config"
	"ai-ops-copilot-be/internal/dto"
	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/rag/retriever"
)

type IKnowledgeService interface {
	Ingest(ctx context.Context) (*dto.KnowledgeIngestResponse, error)
	Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
}

type knowledgeService struct {
	engine *retriever.Engine
	cfg    config.KnowledgeConfig
	logger logger.ILogger
}

func NewKnowledgeService(engine *retriever.Engine, cfg config.KnowledgeConfig, log logger.ILogger) IKnowledgeService {
	return &knowledgeService{
		engine: engine,
		cfg:    cfg,
		logger: log,
	}
}

func (s *knowledgeService) Ingest(ctx context.Context) (*dto.KnowledgeIngestResponse, error) {
	report, err := s.engine.Ingest(ctx, s.cfg.Namespace)
	if err != nil {
		s.logger.Error("KnowledgeService", "Ingestion failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	s.logger.Info("KnowledgeService", "Ingestion finished", map[string]interface{}{
		"status":           report.Status,
		"documents_loaded": report.DocumentsLoaded,
		"chunks_stored":    report.ChunksStored,
	})

	return &dto.KnowledgeIngestResponse{
		Status:          report.Status,
		DocumentsLoaded: report.DocumentsLoaded,
		ChunksCreated:   report.ChunksCreated,
		ChunksStored:    report.ChunksStored,
	}, nil
}

func (s *knowledgeService) Search(ctx context.Context, req *dto.KnowledgeSearchRequest) (*dto.KnowledgeSearchResponse, error) {
	k := req.K
	if k <= 0 {
		k = s.cfg.MaxDocuments
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = s.cfg.MinScore
	}

	results, err := s.engine.Retrieve(ctx, req.Query, k, minScore, s.cfg.Namespace)
	if err != nil {
		return nil, err
	}

	resp := &dto.KnowledgeSearchResponse{
		Query:   req.Query,
		Results: make([]dto.KnowledgeSearchResult, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, dto.KnowledgeSearchResult{
			ChunkID:  r.ChunkID,
			Content:  r.Content,
			Score:    r.Score,
			Source:   r.Source,
			Filename: r.Filename,
			DocType:  r.DocType,
			Citation: r.Citation(),
		})
	}
	return resp, nil
}

func (s *knowledgeService) Stats(_ context.Context) (*dto.KnowledgeStatsResponse, error) {
	stats := s.engine.Stats()
	return &dto.KnowledgeStatsResponse{
		Initialized:        stats.IsInitialized,
		DocumentsIngested:  stats.DocumentsIngested,
		TotalChunks:        stats.StoreStats.TotalChunks,
		TotalRetrievals:    stats.TotalRetrievals,
		TotalSearches:      stats.StoreStats.TotalSearches,
		AvgSearchTimeMs:    stats.StoreStats.AvgSearchTimeMs,
		EmbeddingModel:     stats.StoreStats.EmbeddingModel,
		EmbeddingDimension: stats.StoreStats.EmbeddingDimension,
	}, nil
}
