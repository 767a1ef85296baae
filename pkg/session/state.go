package session

import (
	"slices"
	"strings"
)

// Role of a conversation message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

const (
	// Greeting is appended once when the interface is materialized.
	Greeting = "Hi! How can I help you today?"
	// FailureMessage is what the user sees for every failed exchange.
	FailureMessage = "Sorry, I encountered an error processing your request."
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the conversation plus the exchange guard. Pending is true while
// exactly one exchange is in flight.
type State struct {
	Conversation []Message `json:"conversation"`
	Pending      bool      `json:"pending"`
	Input        string    `json:"input"`
	Greeted      bool      `json:"greeted"`
}

// Event drives Transition.
type Event interface {
	EventName() string
}

type Greet struct{}

type InputChanged struct{ Text string }

type Submit struct{ Text string }

type Succeeded struct{ Text string }

type Failed struct{ Err error }

func (Greet) EventName() string { return "greet" }
func (InputChanged) EventName() string { return "input_changed" }
func (Submit) EventName() string { return "submit" }
func (Succeeded) EventName() string { return "succeeded" }
func (Failed) EventName() string { return "failed" }

// Transition is the pure state machine: it never mutates s and performs no I/O.
// Rejected events return s unchanged with no effects.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Greet:
		if s.Greeted {
			return s, nil
		}
		msg := Message{Role: RoleAssistant, Content: Greeting}
		next := s
		next.Greeted = true
		next.Conversation = appendMessage(s.Conversation, msg)
		return next, []Effect{
			AppendMessage{Message: msg},
			SetSubmitEnabled{Enabled: false},
		}

	case InputChanged:
		next := s
		next.Input = e.Text
		if s.Pending {
			return next, nil
		}
		return next, []Effect{SetSubmitEnabled{Enabled: !isBlank(e.Text)}}

	case Submit:
		if s.Pending || isBlank(e.Text) {
			return s, nil
		}
		msg := Message{Role: RoleHuman, Content: e.Text}
		next := s
		next.Conversation = appendMessage(s.Conversation, msg)
		next.Input = ""
		next.Pending = true
		return next, []Effect{
			AppendMessage{Message: msg},
			ClearInput{},
			SetSubmitEnabled{Enabled: false},
			ShowLoading{},
			SetAgentActive{Active: true},
			RequestCompletion{Text: e.Text},
		}

	case Succeeded:
		if !s.Pending {
			return s, nil
		}
		return settle(s, Message{Role: RoleAssistant, Content: e.Text})

	case Failed:
		if !s.Pending {
			return s, nil
		}
		return settle(s, Message{Role: RoleAssistant, Content: FailureMessage})
	}

	return s, nil
}

func settle(s State, msg Message) (State, []Effect) {
	next := s
	next.Conversation = appendMessage(s.Conversation, msg)
	next.Pending = false
	return next, []Effect{
		AppendMessage{Message: msg},
		HideLoading{},
		SetAgentActive{Active: false},
		SetSubmitEnabled{Enabled: !isBlank(next.Input)},
	}
}

// appendMessage never writes into the backing array of conv.
func appendMessage(conv []Message, msg Message) []Message {
	return append(slices.Clip(conv), msg)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
