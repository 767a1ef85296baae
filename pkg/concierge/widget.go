package concierge

import (
	"context"
	"fmt"
	"net/http"

	"concierge-be/internal/pkg/logger"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/panel"
	"concierge-be/pkg/prompt"
	"concierge-be/pkg/session"
	"concierge-be/pkg/source"
)

const module = "Concierge"

// Host is everything a widget needs from the environment it is embedded in.
type Host interface {
	session.Renderer
	panel.Surface
}

// NopHost renders nothing and schedules frames on a timer.
type NopHost struct {
	session.NopRenderer
}

func (NopHost) SetPaintable(bool)      {}
func (NopHost) SetOpen(bool)           {}
func (NopHost) RequestFrame(fn func()) { panel.NextFrame(fn) }

type options struct {
	httpClient *http.Client
	logger     logger.ILogger
	page       *source.Page
	cache      source.Cache
	observers  []session.Observer
}

type Option func(*options)

// WithHTTPClient is used for ingestion and completion calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithPage describes the document hosting the widget, so sources pointing at
// it are read in place.
func WithPage(page *source.Page) Option {
	return func(o *options) {
		o.page = page
	}
}

func WithSourceCache(cache source.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithObserver is notified after every settled exchange.
func WithObserver(obs session.Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// Widget is one embedded assistant: a conversation plus its panel.
type Widget struct {
	cfg        Config
	client     completion.Client
	controller *session.Controller
	panel      *panel.Lifecycle
	composer   prompt.Composer
	logger     logger.ILogger

	ingested chan struct{}
	sources  []source.Ingested
}

// NewStandalone builds a widget that talks to an LLM provider directly, or runs
// in demo mode when no credential is configured. Ingestion starts immediately
// and is bound to ctx.
func NewStandalone(ctx context.Context, cfg Config, host Host, opts ...Option) (*Widget, error) {
	if cfg.Backend == completion.KindServer {
		return nil, fmt.Errorf("server backend requires a validated server, use ValidateServer")
	}
	return build(ctx, cfg, host, "", opts)
}

func build(ctx context.Context, cfg Config, host Host, serverURL string, opts []Option) (*Widget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Merge()

	o := &options{logger: logger.NewNopLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if host == nil {
		host = NopHost{}
	}

	kind := cfg.Backend
	if serverURL != "" {
		kind = completion.KindServer
	}
	client, err := completion.NewClient(completion.Options{
		Kind:            kind,
		ServerURL:       serverURL,
		Credential:      cfg.Credential,
		Provider:        cfg.Provider,
		ProviderBaseURL: cfg.ProviderURL,
		Model:           cfg.Model,
		HTTPClient:      o.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	w := &Widget{
		cfg:    cfg,
		client: client,
		composer: prompt.Composer{
			AssistantName: cfg.Name,
			Tone:          cfg.Tone,
			SystemPrompt:  cfg.SystemPrompt,
			Strict:        cfg.Strict,
		},
		logger:   o.logger,
		ingested: make(chan struct{}),
	}

	sessionOpts := []session.Option{
		session.WithLogger(o.logger),
		session.WithTurnFunc(w.turn),
	}
	for _, obs := range o.observers {
		sessionOpts = append(sessionOpts, session.WithObserver(obs))
	}
	w.controller = session.NewController(host, client, sessionOpts...)
	w.panel = panel.New(host, panel.WithLogger(o.logger))

	w.logger.Info(module, "Widget created", map[string]interface{}{
		"backend": string(client.Kind()),
		"sources": len(cfg.Sources),
	})

	// A server backend ingests on its side from the sources sent with each turn.
	if client.Kind() == completion.KindServer || len(cfg.Sources) == 0 {
		close(w.ingested)
		return w, nil
	}

	ingestor := source.NewIngestor(
		source.WithHTTPClient(o.httpClient),
		source.WithPage(o.page),
		source.WithCache(o.cache),
		source.WithLogger(o.logger),
	)
	go func() {
		defer close(w.ingested)
		w.sources = ingestor.Ingest(ctx, cfg.Sources)
	}()
	return w, nil
}

func (w *Widget) turn(ctx context.Context, userMessage string) completion.Turn {
	sources, err := w.Sources(ctx)
	if err != nil {
		w.logger.Warn(module, "Composing without sources", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return completion.Turn{
		UserMessage:    userMessage,
		AssistantName:  w.cfg.Name,
		Categories:     w.cfg.Categories,
		Sources:        w.cfg.Sources,
		SystemPrompt:   w.cfg.SystemPrompt,
		ComposedPrompt: w.composer.Compose(sources),
	}
}

// Sources waits for startup ingestion and returns its result.
func (w *Widget) Sources(ctx context.Context) ([]source.Ingested, error) {
	select {
	case <-w.ingested:
		return w.sources, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready is closed once startup ingestion has finished.
func (w *Widget) Ready() <-chan struct{} {
	return w.ingested
}

// ComposedPrompt is the system prompt sent with every direct-backend turn.
func (w *Widget) ComposedPrompt(ctx context.Context) (string, error) {
	sources, err := w.Sources(ctx)
	if err != nil {
		return "", err
	}
	return w.composer.Compose(sources), nil
}

func (w *Widget) Config() Config {
	return w.cfg
}

func (w *Widget) Backend() completion.Kind {
	return w.client.Kind()
}

// Load materializes the interface (greeting included) and opens the panel.
func (w *Widget) Load() {
	w.controller.Materialize()
	w.panel.Open()
}

func (w *Widget) Open() {
	w.controller.Materialize()
	w.panel.Open()
}

func (w *Widget) Close() {
	w.panel.Close()
}

// OverlayClicked is a click outside the panel.
func (w *Widget) OverlayClicked() {
	w.panel.OverlayClicked()
}

// Input mirrors the host's input buffer.
func (w *Widget) Input(text string) {
	w.controller.Input(text)
}

// Submit sends text and blocks until the exchange settles. It reports whether
// the submission was accepted.
func (w *Widget) Submit(ctx context.Context, text string) bool {
	return w.controller.Submit(ctx, text)
}

func (w *Widget) Snapshot() session.State {
	return w.controller.Snapshot()
}

func (w *Widget) Visibility() panel.Visibility {
	return w.panel.State()
}

// ObservePanel registers fn for every later panel transition.
func (w *Widget) ObservePanel(fn panel.TransitionFunc) {
	w.panel.Observe(fn)
}
