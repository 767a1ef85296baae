package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"concierge-be/pkg/source"
)

// CompletionPath is appended to the server base URL.
const CompletionPath = "/completion"

// ServerRequest is the body posted to a concierge server.
type ServerRequest struct {
	AssistantName string        `json:"assistantName"`
	Categories    []string      `json:"categories"`
	Sources       []source.Spec `json:"sources"`
	SystemPrompt  string        `json:"systemPrompt"`
	UserMessage   string        `json:"userMessage"`
}

// ServerResponse is either {text} or {error: {message}}.
type ServerResponse struct {
	Text  *string      `json:"text,omitempty"`
	Error *ServerError `json:"error,omitempty"`
}

type ServerError struct {
	Message string `json:"message"`
}

// ServerBackend posts turns to a concierge server, which ingests sources and
// composes the prompt on its side.
type ServerBackend struct {
	baseURL    string
	credential string
	client     *http.Client
}

var _ Client = (*ServerBackend)(nil)

func NewServerBackend(baseURL, credential string, client *http.Client) *ServerBackend {
	if client == nil {
		client = &http.Client{}
	}
	return &ServerBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		client:     client,
	}
}

func (b *ServerBackend) Kind() Kind {
	return KindServer
}

func (b *ServerBackend) Endpoint() string {
	return b.baseURL + CompletionPath
}

func (b *ServerBackend) Complete(ctx context.Context, turn Turn) (string, error) {
	categories := turn.Categories
	if categories == nil {
		categories = []string{}
	}
	sources := turn.Sources
	if sources == nil {
		sources = []source.Spec{}
	}

	payload, err := json.Marshal(ServerRequest{
		AssistantName: turn.AssistantName,
		Categories:    categories,
		Sources:       sources,
		SystemPrompt:  turn.SystemPrompt,
		UserMessage:   turn.UserMessage,
	})
	if err != nil {
		return "", b.fail(0, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", b.fail(0, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.credential != "" {
		req.Header.Set("Authorization", "Bearer "+b.credential)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", b.fail(0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", b.fail(resp.StatusCode, "read response", err)
	}

	var out ServerResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", b.fail(resp.StatusCode, "malformed response", err)
	}

	// An error object fails the turn whatever the status says.
	if out.Error != nil {
		return "", &BackendError{Kind: KindServer, StatusCode: resp.StatusCode, Message: out.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &BackendError{Kind: KindServer, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out.Text == nil {
		return "", &BackendError{Kind: KindServer, StatusCode: resp.StatusCode, Message: "response has no text"}
	}

	return *out.Text, nil
}

func (b *ServerBackend) fail(status int, what string, err error) error {
	return &BackendError{
		Kind:       KindServer,
		StatusCode: status,
		Message:    fmt.Sprintf("%s: %v", what, err),
		Err:        err,
	}
}
