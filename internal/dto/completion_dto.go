package dto

import "concierge-be/pkg/source"

// CompletionRequest is the body of POST /completion.
type CompletionRequest struct {
	AssistantName string        `json:"assistantName"`
	Categories    []string      `json:"categories"`
	Sources       []source.Spec `json:"sources" validate:"max=20"`
	SystemPrompt  string        `json:"systemPrompt"`
	UserMessage   string        `json:"userMessage" validate:"required"`
}

// CompletionResponse is either {text} or {error: {message}}.
type CompletionResponse struct {
	Text  *string          `json:"text,omitempty"`
	Error *CompletionError `json:"error,omitempty"`
}

type CompletionError struct {
	Message string `json:"message"`
}

type ServerProbeResponse struct {
	IsConciergeServer bool `json:"isConciergeServer"`
}
