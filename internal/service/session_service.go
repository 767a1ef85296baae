package service

import (
	"context"
	"net/http"

	"concierge-be/internal/dto"
	"concierge-be/internal/entity"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/repository/memory"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/concierge"
	"concierge-be/pkg/session"
	"concierge-be/pkg/source"
	"concierge-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HostedBackend is the LLM configuration hosted sessions inherit when the
// caller does not bring a credential of its own.
type HostedBackend struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	Dispatch(ctx context.Context, id uuid.UUID, cmd concierge.Command) (*dto.SessionResponse, error)
	Submit(ctx context.Context, id uuid.UUID, text string) (*dto.SubmitResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	repo       *memory.SessionRepository
	frames     FramePublisher
	exchanges  IExchangeService
	cache      source.Cache
	httpClient *http.Client
	backend    HostedBackend
	logger     logger.ILogger
}

func NewSessionService(
	repo *memory.SessionRepository,
	frames FramePublisher,
	exchanges IExchangeService,
	cache source.Cache,
	httpClient *http.Client,
	backend HostedBackend,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		repo:       repo,
		frames:     frames,
		exchanges:  exchanges,
		cache:      cache,
		httpClient: httpClient,
		backend:    backend,
		logger:     log,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	cfg := req.Config
	if cfg.Backend == completion.KindServer {
		return nil, ErrServerBackend
	}
	if cfg.Credential == "" && cfg.Backend != completion.KindDemo {
		cfg.Provider = s.backend.Provider
		cfg.Model = s.backend.Model
		cfg.ProviderURL = s.backend.BaseURL
		cfg.Credential = s.backend.APIKey
	}

	id := uuid.New()
	host := newRemoteHost(id, s.frames)

	opts := []concierge.Option{
		concierge.WithLogger(s.logger),
		concierge.WithHTTPClient(s.httpClient),
		concierge.WithObserver(func(ex session.Exchange) {
			s.exchanges.Record(context.Background(), ExchangeMeta{
				Origin:        entity.ExchangeOriginSession,
				SessionId:     &id,
				AssistantName: cfg.Name,
				Categories:    cfg.Categories,
			}, ex)
		}),
	}
	if s.cache != nil {
		opts = append(opts, concierge.WithSourceCache(s.cache))
	}
	if req.Page != nil {
		opts = append(opts, concierge.WithPage(req.Page))
	}

	// Ingestion outlives the request that created the session.
	widget, err := concierge.NewStandalone(context.Background(), cfg, host, opts...)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	widget.ObservePanel(host.visibilityChanged)

	sess := store.NewSession(id, widget)
	s.repo.Save(sess)

	if req.Open {
		widget.Load()
	}

	s.logger.Info("SessionService", "Hosted session created", map[string]interface{}{
		"session_id": id.String(),
		"backend":    string(widget.Backend()),
	})
	return toSessionResponse(sess), nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return toSessionResponse(sess), nil
}

func (s *sessionService) Dispatch(ctx context.Context, id uuid.UUID, cmd concierge.Command) (*dto.SessionResponse, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := sess.Widget.Dispatch(ctx, cmd); err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

func (s *sessionService) Submit(ctx context.Context, id uuid.UUID, text string) (*dto.SubmitResponse, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	accepted := sess.Widget.Submit(ctx, text)
	return &dto.SubmitResponse{
		Accepted: accepted,
		Session:  toSessionResponse(sess),
	}, nil
}

func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.repo.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.repo.Delete(id)
	return nil
}

func toSessionResponse(sess *store.Session) *dto.SessionResponse {
	w := sess.Widget
	snap := w.Snapshot()
	cfg := w.Config()

	conversation := make([]dto.MessageDTO, 0, len(snap.Conversation))
	for _, m := range snap.Conversation {
		conversation = append(conversation, dto.MessageDTO{Role: string(m.Role), Content: m.Content})
	}

	return &dto.SessionResponse{
		Id:           sess.ID,
		Backend:      string(w.Backend()),
		Visibility:   string(w.Visibility()),
		Pending:      snap.Pending,
		Input:        snap.Input,
		Conversation: conversation,
		Avatar:       cfg.AvatarHTML(),
		FullScreen:   cfg.IsFullScreen(),
		Colors:       cfg.Colors,
		CreatedAt:    sess.CreatedAt,
	}
}
