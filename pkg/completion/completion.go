package completion

import (
	"context"
	"errors"
	"fmt"

	"concierge-be/pkg/source"
)

// Kind selects the completion backend.
type Kind string

const (
	KindServer Kind = "server"
	KindDirect Kind = "direct"
	KindDemo   Kind = "demo"
)

// Turn is everything a backend may need to answer one user message. Backends
// read the fields relevant to them: the server backend forwards the raw
// configuration, the direct backend only needs ComposedPrompt.
type Turn struct {
	UserMessage    string
	AssistantName  string
	Categories     []string
	Sources        []source.Spec
	SystemPrompt   string
	ComposedPrompt string
}

// Client sends exactly one request per turn and never retries.
type Client interface {
	Complete(ctx context.Context, turn Turn) (string, error)
	Kind() Kind
}

// BackendError is the single failure shape every backend returns. Message is the
// backend's own text, kept for diagnostics.
type BackendError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s backend: %s", e.Kind, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// MessageOf extracts the backend message from err, or err's text for other errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
