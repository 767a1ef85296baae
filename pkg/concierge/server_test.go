package concierge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"concierge-be/pkg/completion"
	"concierge-be/pkg/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"concierge server", http.StatusOK, `{"isConciergeServer":true}`, false},
		{"flag false", http.StatusOK, `{"isConciergeServer":false}`, true},
		{"flag missing", http.StatusOK, `{}`, true},
		{"not found", http.StatusNotFound, `{"isConciergeServer":true}`, true},
		{"not json", http.StatusOK, `<html></html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, ProbePath, r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			b, err := ValidateServer(context.Background(), srv.URL+"/")
			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to validate concierge server: ")
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, srv.URL, b.ServerURL())
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := ValidateServer(context.Background(), url)
		assert.ErrorContains(t, err, "failed to validate concierge server: ")
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := ValidateServer(context.Background(), "  ")
		assert.EqualError(t, err, "failed to validate concierge server: server url is required")
	})
}

func TestBuilder_WidgetUsesServerBackend(t *testing.T) {
	var got completion.ServerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ProbePath:
			_, _ = w.Write([]byte(`{"isConciergeServer":true}`))
		case completion.CompletionPath:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"text":"From the server"}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	b, err := ValidateServer(context.Background(), srv.URL)
	require.NoError(t, err)

	cfg := Config{
		Name:         "Ava",
		SystemPrompt: "Base",
		Sources:      []source.Spec{source.Web("https://a.example", "/faq")},
		Categories:   []string{"support"},
	}
	w, err := b.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, completion.KindServer, w.Backend())

	// Sources are not fetched client-side.
	select {
	case <-w.Ready():
	default:
		t.Fatal("server widgets should not ingest")
	}

	w.Load()
	require.True(t, w.Submit(context.Background(), "hi"))

	conv := w.Snapshot().Conversation
	assert.Equal(t, "From the server", conv[len(conv)-1].Content)
	assert.Equal(t, completion.ServerRequest{
		AssistantName: "Ava",
		Categories:    []string{"support"},
		Sources:       cfg.Sources,
		SystemPrompt:  "Base",
		UserMessage:   "hi",
	}, got)
}
