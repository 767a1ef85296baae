package dto

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeEventMessage travels over the in-process bus after every exchange.
type ExchangeEventMessage struct {
	Id            uuid.UUID  `json:"id"`
	SessionId     *uuid.UUID `json:"session_id,omitempty"`
	Origin        string     `json:"origin"`
	Backend       string     `json:"backend"`
	AssistantName string     `json:"assistant_name,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	UserMessage   string     `json:"user_message"`
	Reply         string     `json:"reply,omitempty"`
	Error         string     `json:"error,omitempty"`
	PromptDigest  string     `json:"prompt_digest,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

type ExchangeResponse struct {
	Id            uuid.UUID  `json:"id"`
	SessionId     *uuid.UUID `json:"session_id,omitempty"`
	Origin        string     `json:"origin"`
	Backend       string     `json:"backend"`
	Status        string     `json:"status"`
	AssistantName string     `json:"assistant_name,omitempty"`
	UserMessage   string     `json:"user_message"`
	Reply         string     `json:"reply,omitempty"`
	Error         *string    `json:"error,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `json:"created_at"`
}
