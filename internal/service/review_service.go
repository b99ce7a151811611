package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-ops-copilot-be/internal/dto"
	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/internal/pkg/serverutils"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/workflow"
)

type IReviewService interface {
	PendingReview(ctx context.Context, ticketID string) (*dto.PendingReviewResponse, error)
	Decide(ctx context.Context, ticketID string, req *dto.HumanDecisionRequest) (*dto.HumanDecisionResponse, error)
}

type reviewService struct {
	engine *workflow.Engine
	logger logger.ILogger
}

func NewReviewService(engine *workflow.Engine, log logger.ILogger) IReviewService {
	return &reviewService{
		engine: engine,
		logger: log,
	}
}

// PendingReview projects the paused workflow state into what an operator
// needs to make a decision.
func (s *reviewService) PendingReview(ctx context.Context, ticketID string) (*dto.PendingReviewResponse, error) {
	state, err := s.engine.Status(ctx, ticketID)
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	if state.Status != workflow.StatusPausedForHuman {
		return nil, serverutils.NewConflictError("ticket is not awaiting review")
	}

	resp := &dto.PendingReviewResponse{
		TicketID:    state.TicketID,
		Subject:     state.Ticket.Subject,
		PausedSince: state.UpdatedAt,
	}

	if state.DecisionOutput != nil && state.DecisionOutput.Result != nil {
		d := state.DecisionOutput.Result
		resp.RecommendedAction = d.RecommendedAction
		resp.Confidence = d.Confidence
		resp.RiskFlags = d.RiskFlags
		resp.Rationale = d.Rationale
	}
	if state.TriageOutput != nil && state.TriageOutput.Result != nil {
		resp.Category = state.TriageOutput.Result.PrimaryCategory
		resp.Severity = state.TriageOutput.Result.Severity
	}
	for _, doc := range state.RetrievedDocuments {
		resp.Citations = append(resp.Citations, doc.Citation)
	}

	return resp, nil
}

// Decide applies an operator decision to a paused workflow and resumes it.
func (s *reviewService) Decide(ctx context.Context, ticketID string, req *dto.HumanDecisionRequest) (*dto.HumanDecisionResponse, error) {
	hd := stage.HumanDecision{
		Action:          req.Action,
		ModifiedPayload: req.ModifiedPayload,
		OperatorID:      req.OperatorID,
		Notes:           req.Notes,
		DecidedAt:       time.Now().UTC(),
	}

	state, err := s.engine.Resume(ctx, ticketID, hd)
	if err != nil {
		s.logger.Warn("ReviewService", "Resume rejected", map[string]interface{}{
			"ticket_id": ticketID,
			"action":    req.Action,
			"error":     err.Error(),
		})
		return nil, mapWorkflowError(err)
	}

	s.logger.Info("ReviewService", fmt.Sprintf("Operator decision applied: %s", req.Action), map[string]interface{}{
		"ticket_id":   ticketID,
		"operator_id": req.OperatorID,
		"status":      state.Status,
	})

	return &dto.HumanDecisionResponse{
		TicketID: ticketID,
		Status:   state.Status,
	}, nil
}

func mapWorkflowError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrCheckpointNotFound):
		return serverutils.NewNotFoundError("no workflow found for this ticket")
	case errors.Is(err, workflow.ErrNoPendingReview):
		return serverutils.NewConflictError("ticket is not awaiting review")
	case errors.Is(err, workflow.ErrWorkflowFinished):
		return serverutils.NewConflictError("workflow already finished")
	default:
		return err
	}
}
