package completion

import (
	"context"
	"errors"

	"concierge-be/pkg/llm"
)

// DirectBackend calls an LLM provider itself with [system, user] messages.
type DirectBackend struct {
	provider llm.Provider
}

var _ Client = (*DirectBackend)(nil)

func NewDirectBackend(provider llm.Provider) *DirectBackend {
	return &DirectBackend{provider: provider}
}

func (b *DirectBackend) Kind() Kind {
	return KindDirect
}

func (b *DirectBackend) Complete(ctx context.Context, turn Turn) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: turn.ComposedPrompt},
		{Role: llm.RoleUser, Content: turn.UserMessage},
	}

	text, err := b.provider.Chat(ctx, messages)
	if err != nil {
		var apiErr *llm.APIError
		if errors.As(err, &apiErr) {
			return "", &BackendError{Kind: KindDirect, StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
		}
		return "", &BackendError{Kind: KindDirect, Message: err.Error(), Err: err}
	}
	return text, nil
}
