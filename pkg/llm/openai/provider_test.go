package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"concierge-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Chat(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		want        string
		wantStatus  int
		wantMessage string
	}{
		{"first choice", http.StatusOK, `{"choices":[{"message":{"content":"one"}},{"message":{"content":"two"}}]}`, "one", 0, ""},
		{"error object with status", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, "", 429, "Rate limit reached"},
		{"plain text failure", http.StatusServiceUnavailable, `upstream unavailable`, "", 503, "upstream unavailable"},
		{"empty failure body", http.StatusBadGateway, ``, "", 502, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProvider("key", srv.URL+"/", "gpt-test", nil)
			assert.Equal(t, srv.URL+"/chat/completions", p.Endpoint())

			text, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, llm.WithMaxTokens(64))
			assert.Equal(t, "gpt-test", got.Model)
			assert.Equal(t, 64, got.MaxTokens)

			if tt.wantMessage != "" {
				var apiErr *llm.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				assert.Equal(t, tt.wantMessage, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider("", "", "", nil)
	assert.Equal(t, DefaultBaseURL+"/chat/completions", p.Endpoint())
	assert.Equal(t, DefaultModel, p.model)
}
