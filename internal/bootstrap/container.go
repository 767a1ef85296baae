package bootstrap

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"concierge-be/internal/config"
	"concierge-be/internal/controller"
	"concierge-be/internal/handler"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/repository/contract"
	"concierge-be/internal/repository/implementation"
	"concierge-be/internal/repository/memory"
	redisRepo "concierge-be/internal/repository/redis"
	"concierge-be/internal/service"
	"concierge-be/internal/websocket"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/concierge"
	"concierge-be/pkg/events"
	"concierge-be/pkg/llm/factory"
	"concierge-be/pkg/source"

	pktNats "concierge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const exchangeTopic = "concierge.exchanges"

type Container struct {
	// Controllers
	CompletionController  controller.ICompletionController
	WidgetController      controller.IWidgetController
	SessionController     controller.ISessionController
	DiagnosticsController controller.IDiagnosticsController

	// WebSockets
	SessionSocketHandler *handler.SessionSocketHandler
	WebSocketHub         *websocket.Hub

	// Background Services (run by main)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every component. db may be nil, which disables the
// exchange audit table; empty Redis and NATS URLs disable those integrations.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (falling back to in-memory cache)", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	var forwarder *events.Forwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = events.NewForwarder(natsPub, sysLogger)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var exchangeRepo contract.ExchangeRepository
	if db != nil {
		exchangeRepo = implementation.NewExchangeRepository(db)
	}

	ttl := time.Duration(cfg.Source.CacheTTLMinutes) * time.Minute
	var sourceCache source.Cache
	if rdb != nil {
		sourceCache = redisRepo.NewSourceCache(rdb, ttl, sysLogger)
		log.Printf("[INFO] Using Source Cache: REDIS (ttl %s)", ttl)
	} else {
		sourceCache = memory.NewSourceCache(ttl)
		log.Printf("[INFO] Using Source Cache: MEMORY (ttl %s)", ttl)
	}

	// No timeout: completion and ingestion calls run until they finish or fail.
	httpClient := &http.Client{}

	// 3. Completion backend
	providerURL := cfg.Ai.LLMBaseURL
	if strings.EqualFold(cfg.Ai.LLMProvider, factory.ProviderOllama) && providerURL == "" {
		providerURL = cfg.Ai.OllamaBaseURL
	}
	completionClient, err := completion.NewClient(completion.Options{
		Provider:        cfg.Ai.LLMProvider,
		ProviderBaseURL: providerURL,
		Model:           cfg.Ai.LLMModel,
		Credential:      cfg.Keys.LLM,
		HTTPClient:      httpClient,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize completion backend: %v", err)
	}
	log.Printf("[INFO] Using Completion Backend: %s (%s %s)", completionClient.Kind(), cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/session_socket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 5. Services
	publisherService := service.NewPublisherService(exchangeTopic, pubSub)
	exchangeService := service.NewExchangeService(publisherService, exchangeRepo, sysLogger)
	consumerService := service.NewConsumerService(pubSub, exchangeTopic, exchangeRepo, forwarder, sysLogger)

	completionService := service.NewCompletionService(completionClient, sourceCache, httpClient, exchangeService, sysLogger)

	sessionRepo := memory.NewSessionRepository()
	sessionService := service.NewSessionService(
		sessionRepo,
		wsHub,
		exchangeService,
		sourceCache,
		httpClient,
		service.HostedBackend{
			Provider: cfg.Ai.LLMProvider,
			Model:    cfg.Ai.LLMModel,
			BaseURL:  providerURL,
			APIKey:   cfg.Keys.LLM,
		},
		sysLogger,
	)

	wsHub.OnCommand(func(ctx context.Context, sessionID uuid.UUID, cmd concierge.Command) {
		if _, err := sessionService.Dispatch(ctx, sessionID, cmd); err != nil {
			wsLogger.Warn("Hub", "Command failed", map[string]interface{}{
				"session_id": sessionID,
				"command":    string(cmd.Name),
				"error":      err.Error(),
			})
		}
	})

	// 6. Controllers
	c.CompletionController = controller.NewCompletionController(completionService)
	c.WidgetController = controller.NewWidgetController(cfg.App.WidgetScriptPath)
	c.SessionController = controller.NewSessionController(sessionService)
	c.DiagnosticsController = controller.NewDiagnosticsController(sysLogger, exchangeService)
	c.SessionSocketHandler = handler.NewSessionSocketHandler(sessionRepo, wsHub, cfg.Keys.JWTSecret, wsLogger)
	c.WebSocketHub = wsHub
	c.ConsumerService = consumerService

	return c
}

// Close releases external connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
