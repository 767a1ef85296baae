package dto

import (
	"time"

	"concierge-be/pkg/concierge"
	"concierge-be/pkg/source"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Config concierge.Config `json:"config"`
	Page   *source.Page     `json:"page,omitempty" validate:"omitempty"`
	Open   bool             `json:"open"`
}

type SessionCommandRequest struct {
	Text string `json:"text"`
}

type MessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SessionResponse struct {
	Id           uuid.UUID             `json:"id"`
	Backend      string                `json:"backend"`
	Visibility   string                `json:"visibility"`
	Pending      bool                  `json:"pending"`
	Input        string                `json:"input"`
	Conversation []MessageDTO          `json:"conversation"`
	Avatar       string                `json:"avatar"`
	FullScreen   bool                  `json:"isFullScreen"`
	Colors       concierge.ColorConfig `json:"color"`
	CreatedAt    time.Time             `json:"created_at"`
}

type SubmitResponse struct {
	Accepted bool             `json:"accepted"`
	Session  *SessionResponse `json:"session"`
}

// SessionFrame is one effect streamed to a hosted session's sockets.
type SessionFrame struct {
	Type      string    `json:"type"`
	SessionId uuid.UUID `json:"session_id"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}
