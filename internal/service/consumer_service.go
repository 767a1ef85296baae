package service

import (
	"context"
	"encoding/json"
	"time"

	"concierge-be/internal/dto"
	"concierge-be/internal/entity"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/repository/contract"
	"concierge-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	// Consume blocks until ctx is done.
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.ExchangeRepository
	forwarder  *events.Forwarder
	logger     logger.ILogger
}

// NewConsumerService writes every exchange to the audit table (when repo is set)
// and forwards it to the external event bus.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.ExchangeRepository,
	forwarder *events.Forwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for msg := range messages {
		cs.processMessage(ctx, msg)
	}
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ExchangeEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal exchange", map[string]interface{}{"error": err.Error()})
		// Ack invalid messages to prevent infinite redelivery.
		msg.Ack()
		return
	}

	failed := payload.Error != ""

	if cs.repo != nil {
		record := toExchangeEntity(payload)
		if err := cs.repo.Create(ctx, record); err != nil {
			// Auditing is best effort; the exchange already reached the user.
			cs.logger.Error("ConsumerService", "Failed to store exchange", map[string]interface{}{
				"exchange_id": payload.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	cs.forwarder.Forward(ctx, events.NewExchangeEvent(failed, map[string]interface{}{
		"exchange_id":    payload.Id.String(),
		"session_id":     payload.SessionId,
		"origin":         payload.Origin,
		"backend":        payload.Backend,
		"assistant_name": payload.AssistantName,
		"categories":     payload.Categories,
		"prompt_digest":  payload.PromptDigest,
		"duration_ms":    payload.DurationMs,
		"error":          payload.Error,
	}, payload.OccurredAt))

	msg.Ack()
}

func toExchangeEntity(p dto.ExchangeEventMessage) *entity.Exchange {
	e := &entity.Exchange{
		Id:            p.Id,
		SessionId:     p.SessionId,
		Origin:        entity.ExchangeOrigin(p.Origin),
		Backend:       p.Backend,
		Status:        entity.ExchangeStatusCompleted,
		AssistantName: p.AssistantName,
		Categories:    p.Categories,
		UserMessage:   p.UserMessage,
		Reply:         p.Reply,
		PromptDigest:  p.PromptDigest,
		Duration:      time.Duration(p.DurationMs) * time.Millisecond,
		CreatedAt:     p.OccurredAt,
	}
	if p.Error != "" {
		msgErr := p.Error
		e.Status = entity.ExchangeStatusFailed
		e.ErrorMessage = &msgErr
	}
	return e
}
