package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-ops-copilot-be/internal/dto"
	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/internal/pkg/serverutils"
	"ai-ops-copilot-be/internal/repository/memory"
	"ai-ops-copilot-be/pkg/events"
	pktNats "ai-ops-copilot-be/pkg/nats"
	"ai-ops-copilot-be/pkg/ticket"
	"ai-ops-copilot-be/pkg/workflow"

	"github.com/google/uuid"
)

type ITicketService interface {
	Submit(ctx context.Context, req *dto.SubmitTicketRequest) (*dto.SubmitTicketResponse, error)
	Status(ctx context.Context, ticketID string) (*dto.TicketStatusResponse, error)
	List(ctx context.Context, query *dto.ListTicketsQuery) ([]*dto.TicketStatusResponse, error)
}

type ticketService struct {
	repo             *memory.TicketRepository
	publisherService IPublisherService
	engine           *workflow.Engine
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewTicketService(
	repo *memory.TicketRepository,
	publisherService IPublisherService,
	engine *workflow.Engine,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ITicketService {
	return &ticketService{
		repo:             repo,
		publisherService: publisherService,
		engine:           engine,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// Submit accepts a ticket and queues it for processing. The response returns
// immediately; the workflow runs on the consumer side.
func (s *ticketService) Submit(ctx context.Context, req *dto.SubmitTicketRequest) (*dto.SubmitTicketResponse, error) {
	ticketID := uuid.NewString()

	t := ticket.Ticket{
		TicketID:   ticketID,
		Subject:    req.Subject,
		Body:       req.Body,
		Channel:    req.Channel,
		CustomerID: req.CustomerID,
		Severity:   req.Severity,
	}
	if t.Channel == "" {
		t.Channel = "api"
	}
	if len(req.Metadata) > 0 {
		t.Metadata = make(map[string]any, len(req.Metadata))
		for k, v := range req.Metadata {
			t.Metadata[k] = v
		}
	}

	s.repo.Save(&memory.TicketRecord{
		Ticket:     t,
		ReceivedAt: time.Now().UTC(),
	})

	msgPayload := dto.ProcessTicketMessage{TicketID: ticketID}
	msgJSON, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, serverutils.NewInternalError("failed to encode process message")
	}
	if err := s.publisherService.Publish(ctx, msgJSON); err != nil {
		s.logger.Error("TicketService", "Failed to queue ticket for processing", map[string]interface{}{
			"ticket_id": ticketID,
			"error":     err.Error(),
		})
		return nil, serverutils.NewInternalError("failed to queue ticket for processing")
	}

	if s.eventPublisher != nil {
		evt := events.NewTicketReceived(ticketID, "")
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("TicketService", "Failed to publish TICKET_RECEIVED event", map[string]interface{}{
				"ticket_id": ticketID,
				"error":     err.Error(),
			})
		}
	}

	s.logger.Info("TicketService", fmt.Sprintf("Ticket accepted: %s", ticketID), map[string]interface{}{
		"channel":  t.Channel,
		"severity": t.Severity,
	})

	return &dto.SubmitTicketResponse{
		TicketID: ticketID,
		Status:   workflow.StatusPending,
	}, nil
}

// Status merges the intake record with the latest workflow checkpoint.
func (s *ticketService) Status(ctx context.Context, ticketID string) (*dto.TicketStatusResponse, error) {
	record, found := s.repo.Get(ticketID)
	if !found {
		return nil, serverutils.NewNotFoundError("ticket not found")
	}
	return s.projectStatus(ctx, record), nil
}

// List returns tickets newest first, optionally filtered by workflow status,
// with offset/limit pagination.
func (s *ticketService) List(ctx context.Context, query *dto.ListTicketsQuery) ([]*dto.TicketStatusResponse, error) {
	records := s.repo.List()
	responses := make([]*dto.TicketStatusResponse, 0, len(records))
	for _, record := range records {
		resp := s.projectStatus(ctx, record)
		if query.Status != "" && resp.Status != query.Status {
			continue
		}
		responses = append(responses, resp)
	}

	if query.Offset > 0 {
		if query.Offset >= len(responses) {
			return []*dto.TicketStatusResponse{}, nil
		}
		responses = responses[query.Offset:]
	}
	if query.Limit > 0 && len(responses) > query.Limit {
		responses = responses[:query.Limit]
	}
	return responses, nil
}

func (s *ticketService) projectStatus(ctx context.Context, record *memory.TicketRecord) *dto.TicketStatusResponse {
	resp := &dto.TicketStatusResponse{
		TicketID:    record.Ticket.TicketID,
		Subject:     record.Ticket.Subject,
		Status:      workflow.StatusPending,
		CurrentStep: workflow.StepStart,
		ReceivedAt:  record.ReceivedAt,
	}

	state, err := s.engine.Status(ctx, record.Ticket.TicketID)
	if err != nil {
		if !errors.Is(err, workflow.ErrCheckpointNotFound) {
			s.logger.Warn("TicketService", "Failed to load workflow state", map[string]interface{}{
				"ticket_id": record.Ticket.TicketID,
				"error":     err.Error(),
			})
		}
		return resp
	}

	resp.Status = state.Status
	resp.CurrentStep = state.CurrentStep
	resp.HumanDecisionRequired = state.HumanDecisionRequired
	resp.CompletedAt = state.CompletedAt
	resp.Error = state.Error
	return resp
}
