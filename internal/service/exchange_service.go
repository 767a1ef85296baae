package service

import (
	"context"
	"encoding/json"

	"concierge-be/internal/dto"
	"concierge-be/internal/entity"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/repository/contract"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/session"

	"github.com/google/uuid"
)

// ExchangeMeta is what the caller knows about an exchange beyond the exchange itself.
type ExchangeMeta struct {
	Origin        entity.ExchangeOrigin
	SessionId     *uuid.UUID
	AssistantName string
	Categories    []string
}

type IExchangeService interface {
	Record(ctx context.Context, meta ExchangeMeta, ex session.Exchange)
	Recent(ctx context.Context, limit int) ([]dto.ExchangeResponse, error)
	BySession(ctx context.Context, sessionId uuid.UUID) ([]dto.ExchangeResponse, error)
}

type exchangeService struct {
	publisher IPublisherService
	repo      contract.ExchangeRepository
	logger    logger.ILogger
}

// NewExchangeService publishes exchanges to the bus. repo may be nil when no
// database is configured; reads then fail with ErrAuditNotConfigured.
func NewExchangeService(publisher IPublisherService, repo contract.ExchangeRepository, log logger.ILogger) IExchangeService {
	return &exchangeService{
		publisher: publisher,
		repo:      repo,
		logger:    log,
	}
}

func (s *exchangeService) Record(ctx context.Context, meta ExchangeMeta, ex session.Exchange) {
	msg := dto.ExchangeEventMessage{
		Id:            ex.ID,
		SessionId:     meta.SessionId,
		Origin:        string(meta.Origin),
		Backend:       string(ex.Backend),
		AssistantName: meta.AssistantName,
		Categories:    meta.Categories,
		UserMessage:   ex.UserMessage,
		Reply:         ex.Reply,
		PromptDigest:  ex.PromptDigest,
		DurationMs:    ex.Duration.Milliseconds(),
		OccurredAt:    ex.StartedAt.Add(ex.Duration),
	}
	if ex.Failed() {
		msg.Error = completion.MessageOf(ex.Err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("ExchangeService", "Failed to encode exchange", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error("ExchangeService", "Failed to publish exchange", map[string]interface{}{
			"exchange_id": ex.ID.String(),
			"error":       err.Error(),
		})
	}
}

func (s *exchangeService) Recent(ctx context.Context, limit int) ([]dto.ExchangeResponse, error) {
	if s.repo == nil {
		return nil, ErrAuditNotConfigured
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	exchanges, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

func (s *exchangeService) BySession(ctx context.Context, sessionId uuid.UUID) ([]dto.ExchangeResponse, error) {
	if s.repo == nil {
		return nil, ErrAuditNotConfigured
	}
	exchanges, err := s.repo.FindBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return toExchangeResponses(exchanges), nil
}

func toExchangeResponses(exchanges []*entity.Exchange) []dto.ExchangeResponse {
	res := make([]dto.ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		res = append(res, dto.ExchangeResponse{
			Id:            e.Id,
			SessionId:     e.SessionId,
			Origin:        string(e.Origin),
			Backend:       e.Backend,
			Status:        string(e.Status),
			AssistantName: e.AssistantName,
			UserMessage:   e.UserMessage,
			Reply:         e.Reply,
			Error:         e.ErrorMessage,
			DurationMs:    e.Duration.Milliseconds(),
			CreatedAt:     e.CreatedAt,
		})
	}
	return res
}
