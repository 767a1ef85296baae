package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"concierge-be/internal/dto"
	"concierge-be/internal/entity"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/repository/memory"
	"concierge-be/pkg/completion"
	"concierge-be/pkg/concierge"
	"concierge-be/pkg/events"
	"concierge-be/pkg/session"
	"concierge-be/pkg/source"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test.exchanges"

type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges []*entity.Exchange
}

func (r *fakeExchangeRepo) Create(_ context.Context, e *entity.Exchange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, e)
	return nil
}

func (r *fakeExchangeRepo) FindRecent(_ context.Context, limit int) ([]*entity.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.exchanges) {
		limit = len(r.exchanges)
	}
	return append([]*entity.Exchange(nil), r.exchanges[:limit]...), nil
}

func (r *fakeExchangeRepo) FindBySession(_ context.Context, id uuid.UUID) ([]*entity.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Exchange
	for _, e := range r.exchanges {
		if e.SessionId != nil && *e.SessionId == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExchangeRepo) All() []*entity.Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Exchange(nil), r.exchanges...)
}

type fakeSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *fakeSink) Publish(_ context.Context, evt events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *fakeSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.EventType())
	}
	return out
}

type stubClient struct {
	mu    sync.Mutex
	turns []completion.Turn
	reply string
	err   error
}

func (c *stubClient) Kind() completion.Kind { return completion.KindDirect }

func (c *stubClient) Complete(_ context.Context, turn completion.Turn) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
	return c.reply, c.err
}

// pipeline wires the exchange service to a running consumer over an in-process bus.
func pipeline(t *testing.T) (IExchangeService, *fakeExchangeRepo, *fakeSink) {
	t.Helper()
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	repo := &fakeExchangeRepo{}
	sink := &fakeSink{}
	consumer := NewConsumerService(pubSub, testTopic, repo, events.NewForwarder(sink, log), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Consume(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return NewExchangeService(NewPublisherService(testTopic, pubSub), repo, log), repo, sink
}

func TestCompletionService_Complete(t *testing.T) {
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"returns":"30 days"}`))
	}))
	defer data.Close()

	tests := []struct {
		name       string
		client     *stubClient
		wantErr    bool
		wantStatus entity.ExchangeStatus
		wantEvent  string
	}{
		{"success", &stubClient{reply: "Returns take 30 days."}, false, entity.ExchangeStatusCompleted, events.ExchangeCompleted},
		{"failure", &stubClient{err: &completion.BackendError{Kind: completion.KindDirect, Message: "quota"}}, true, entity.ExchangeStatusFailed, events.ExchangeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exchanges, repo, sink := pipeline(t)
			svc := NewCompletionService(tt.client, memory.NewSourceCache(time.Minute), data.Client(), exchanges, logger.NewNopLogger())

			text, err := svc.Complete(context.Background(), &dto.CompletionRequest{
				AssistantName: "Ava",
				Sources:       []source.Spec{source.JSON(data.URL)},
				SystemPrompt:  "Base",
				UserMessage:   "How long for returns?",
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "quota", completion.MessageOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.client.reply, text)
			}

			require.Len(t, tt.client.turns, 1)
			composed := tt.client.turns[0].ComposedPrompt
			assert.True(t, strings.HasPrefix(composed, "Base\n\nYour name is Ava."))
			assert.Contains(t, composed, `"returns": "30 days"`)

			require.Eventually(t, func() bool { return len(repo.All()) == 1 }, 2*time.Second, 10*time.Millisecond)
			stored := repo.All()[0]
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, entity.ExchangeOriginCompletion, stored.Origin)
			assert.Equal(t, session.Digest(composed), stored.PromptDigest)
			assert.Nil(t, stored.SessionId)

			require.Eventually(t, func() bool { return len(sink.Types()) == 1 }, 2*time.Second, 10*time.Millisecond)
			assert.Equal(t, []string{tt.wantEvent}, sink.Types())
		})
	}
}

func TestExchangeService_WithoutRepository(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	svc := NewExchangeService(NewPublisherService(testTopic, pubSub), nil, logger.NewNopLogger())

	_, err := svc.Recent(context.Background(), 10)
	assert.ErrorIs(t, err, ErrAuditNotConfigured)

	_, err = svc.BySession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAuditNotConfigured)

	// Recording without subscribers or a repository is harmless.
	svc.Record(context.Background(), ExchangeMeta{Origin: entity.ExchangeOriginCompletion}, session.Exchange{ID: uuid.New()})
}

type recordingFrames struct {
	mu     sync.Mutex
	frames []dto.SessionFrame
}

func (r *recordingFrames) Publish(f dto.SessionFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recordingFrames) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f.Type)
	}
	return out
}

func TestSessionService_Lifecycle(t *testing.T) {
	exchanges, repo, _ := pipeline(t)
	frames := &recordingFrames{}
	svc := NewSessionService(memory.NewSessionRepository(), frames, exchanges, nil, nil, HostedBackend{}, logger.NewNopLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateSessionRequest{
		Config: concierge.Config{Name: "Ava"},
		Open:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(completion.KindDemo), created.Backend)
	require.Len(t, created.Conversation, 1)
	assert.Equal(t, session.Greeting, created.Conversation[0].Content)
	assert.Equal(t, "#011B33", created.Colors.ChatBg)
	assert.True(t, created.FullScreen)

	types := frames.Types()
	assert.Contains(t, types, "append_message")
	assert.Contains(t, types, "set_paintable")

	res, err := svc.Submit(ctx, created.Id, "hello")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	last := res.Session.Conversation[len(res.Session.Conversation)-1]
	assert.Equal(t, "You said: hello", last.Content)

	require.Eventually(t, func() bool { return len(repo.All()) == 1 }, 2*time.Second, 10*time.Millisecond)
	stored := repo.All()[0]
	assert.Equal(t, entity.ExchangeOriginSession, stored.Origin)
	require.NotNil(t, stored.SessionId)
	assert.Equal(t, created.Id, *stored.SessionId)

	blank, err := svc.Submit(ctx, created.Id, "  ")
	require.NoError(t, err)
	assert.False(t, blank.Accepted)

	_, err = svc.Dispatch(ctx, created.Id, concierge.Command{Name: "juggle"})
	assert.Error(t, err)

	require.NoError(t, svc.Delete(ctx, created.Id))
	_, err = svc.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_Create(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer provider.Close()

	tests := []struct {
		name        string
		backend     HostedBackend
		cfg         concierge.Config
		wantBackend completion.Kind
		wantErr     error
	}{
		{"inherits server credential", HostedBackend{APIKey: "sk", BaseURL: provider.URL}, concierge.Config{}, completion.KindDirect, nil},
		{"explicit demo keeps demo", HostedBackend{APIKey: "sk", BaseURL: provider.URL}, concierge.Config{Backend: completion.KindDemo}, completion.KindDemo, nil},
		{"no credential anywhere", HostedBackend{}, concierge.Config{}, completion.KindDemo, nil},
		{"server backend refused", HostedBackend{}, concierge.Config{Backend: completion.KindServer}, "", ErrServerBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSessionService(memory.NewSessionRepository(), &recordingFrames{}, &nopExchanges{}, nil, provider.Client(), tt.backend, logger.NewNopLogger())

			res, err := svc.Create(context.Background(), &dto.CreateSessionRequest{Config: tt.cfg})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantBackend), res.Backend)
			assert.Equal(t, "hidden", res.Visibility)
		})
	}
}

func TestSessionService_CreateRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  concierge.Config
	}{
		{"source without url", concierge.Config{Sources: []source.Spec{{Kind: source.KindJSON}}}},
		{"paths on a json source", concierge.Config{Sources: []source.Spec{{Kind: source.KindJSON, URL: "https://a.com/d.json", Paths: []string{"x"}}}}},
		{"unknown backend", concierge.Config{Backend: "carrier-pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewSessionRepository()
			svc := NewSessionService(repo, &recordingFrames{}, &nopExchanges{}, nil, nil, HostedBackend{}, logger.NewNopLogger())

			_, err := svc.Create(context.Background(), &dto.CreateSessionRequest{Config: tt.cfg})
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		})
	}
}

func TestSessionService_CreateReadsHostingPage(t *testing.T) {
	body := `{
		"config": {"backend": "demo", "sources": [{"type": "web", "url": "https://shop.example/about"}]},
		"page": {"url": "https://shop.example/about/", "title": "About", "description": "Who we are", "text": "We sell hats"}
	}`
	var req dto.CreateSessionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	repo := memory.NewSessionRepository()
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Errorf("hosting page must not be fetched: %s", r.URL)
		return nil, errors.New("unexpected request")
	})}
	svc := NewSessionService(repo, &recordingFrames{}, &nopExchanges{}, nil, client, HostedBackend{}, logger.NewNopLogger())

	res, err := svc.Create(context.Background(), &req)
	require.NoError(t, err)

	sess, ok := repo.Get(res.Id)
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sources, err := sess.Widget.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "About", sources[0].Title)
	assert.Equal(t, "Who we are", sources[0].Description)
	assert.Equal(t, "We sell hats", sources[0].Text)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSessionService_UnknownSession(t *testing.T) {
	svc := NewSessionService(memory.NewSessionRepository(), &recordingFrames{}, &nopExchanges{}, nil, nil, HostedBackend{}, logger.NewNopLogger())
	id := uuid.New()

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Dispatch(context.Background(), id, concierge.Command{Name: concierge.CommandOpen})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Submit(context.Background(), id, "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrSessionNotFound)
}

type nopExchanges struct{}

func (nopExchanges) Record(context.Context, ExchangeMeta, session.Exchange) {}
func (nopExchanges) Recent(context.Context, int) ([]dto.ExchangeResponse, error) {
	return nil, nil
}
func (nopExchanges) BySession(context.Context, uuid.UUID) ([]dto.ExchangeResponse, error) {
	return nil, nil
}
