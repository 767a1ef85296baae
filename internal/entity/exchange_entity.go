package entity

import (
	"time"

	"github.com/google/uuid"
)

type ExchangeStatus string

const (
	ExchangeStatusCompleted ExchangeStatus = "completed"
	ExchangeStatusFailed    ExchangeStatus = "failed"
)

// ExchangeOrigin tells which surface produced the exchange.
type ExchangeOrigin string

const (
	ExchangeOriginCompletion ExchangeOrigin = "completion"
	ExchangeOriginSession    ExchangeOrigin = "session"
)

type Exchange struct {
	Id            uuid.UUID
	SessionId     *uuid.UUID
	Origin        ExchangeOrigin
	Backend       string
	Status        ExchangeStatus
	AssistantName string
	Categories    []string
	UserMessage   string
	Reply         string
	ErrorMessage  *string
	PromptDigest  string
	Duration      time.Duration
	CreatedAt     time.Time
}
