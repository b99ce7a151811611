package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-ops-copilot-be/internal/dto"
	"ai-ops-copilot-be/internal/repository/memory"
	"ai-ops-copilot-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	repo      *memory.TicketRepository
	engine    *workflow.Engine
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo *memory.TicketRepository,
	engine *workflow.Engine,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		repo:      repo,
		engine:    engine,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessTicketMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	record, found := cs.repo.Get(payload.TicketID)
	if !found {
		log.Printf("[ERROR] Ticket not found: %s", payload.TicketID)
		msg.Ack() // Ticket removed? Ack.
		return
	}

	log.Printf("[INFO] Processing ticket %s", payload.TicketID)

	state, err := cs.engine.Run(ctx, record.Ticket)
	if err != nil {
		// The engine persists failure states itself; redelivering the message
		// would restart a workflow that already recorded its outcome.
		log.Printf("[ERROR] Workflow run failed for ticket %s: %v", payload.TicketID, err)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Ticket %s reached status %s at step %s", payload.TicketID, state.Status, state.CurrentStep)
	msg.Ack()
}
