package service

import (
	"context"
	"net/http"
	"time"

	"concierge-be/internal/dto"
	"concierge-be/internal/entity"
	"concierge-be/internal/pkg/logger"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/prompt"
	"concierge-be/pkg/session"
	"concierge-be/pkg/source"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("concierge-be/service")

type ICompletionService interface {
	// Complete answers one widget turn. The returned error carries the backend's
	// message for the {error: {message}} response.
	Complete(ctx context.Context, req *dto.CompletionRequest) (string, error)
	Backend() completion.Kind
}

type completionService struct {
	client     completion.Client
	cache      source.Cache
	httpClient *http.Client
	exchanges  IExchangeService
	logger     logger.ILogger
}

func NewCompletionService(
	client completion.Client,
	cache source.Cache,
	httpClient *http.Client,
	exchanges IExchangeService,
	log logger.ILogger,
) ICompletionService {
	return &completionService{
		client:     client,
		cache:      cache,
		httpClient: httpClient,
		exchanges:  exchanges,
		logger:     log,
	}
}

func (s *completionService) Backend() completion.Kind {
	return s.client.Kind()
}

func (s *completionService) Complete(ctx context.Context, req *dto.CompletionRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "CompletionService.Complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("concierge.backend", string(s.client.Kind())),
		attribute.Int("concierge.sources.declared", len(req.Sources)),
		attribute.StringSlice("concierge.categories", req.Categories),
	)

	ingested := s.ingest(ctx, req.Sources)
	span.SetAttributes(attribute.Int("concierge.sources.ingested", len(ingested)))

	composed := prompt.Composer{
		AssistantName: req.AssistantName,
		SystemPrompt:  req.SystemPrompt,
	}.Compose(ingested)

	ex := session.Exchange{
		ID:           uuid.New(),
		UserMessage:  req.UserMessage,
		Backend:      s.client.Kind(),
		PromptDigest: session.Digest(composed),
		StartedAt:    time.Now(),
	}

	ex.Reply, ex.Err = s.client.Complete(ctx, completion.Turn{
		UserMessage:    req.UserMessage,
		AssistantName:  req.AssistantName,
		Categories:     req.Categories,
		Sources:        req.Sources,
		SystemPrompt:   req.SystemPrompt,
		ComposedPrompt: composed,
	})
	ex.Duration = time.Since(ex.StartedAt)

	s.exchanges.Record(ctx, ExchangeMeta{
		Origin:        entity.ExchangeOriginCompletion,
		AssistantName: req.AssistantName,
		Categories:    req.Categories,
	}, ex)

	if ex.Err != nil {
		span.RecordError(ex.Err)
		span.SetStatus(codes.Error, "completion failed")
		s.logger.Error("CompletionService", "Completion failed", map[string]interface{}{
			"exchange_id": ex.ID.String(),
			"error":       ex.Err.Error(),
		})
		return "", ex.Err
	}

	s.logger.Info("CompletionService", "Completion served", map[string]interface{}{
		"exchange_id": ex.ID.String(),
		"duration_ms": ex.Duration.Milliseconds(),
	})
	return ex.Reply, nil
}

func (s *completionService) ingest(ctx context.Context, specs []source.Spec) []source.Ingested {
	if len(specs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "CompletionService.ingest")
	defer span.End()

	ingestor := source.NewIngestor(
		source.WithHTTPClient(s.httpClient),
		source.WithCache(s.cache),
		source.WithLogger(s.logger),
	)
	return ingestor.Ingest(ctx, specs)
}
