package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	human := Message{Role: RoleHuman, Content: "hi"}
	greeting := Message{Role: RoleAssistant, Content: Greeting}

	tests := []struct {
		name        string
		state       State
		event       Event
		wantState   State
		wantEffects []Effect
	}{
		{
			name:      "greet appends the greeting",
			state:     State{},
			event:     Greet{},
			wantState: State{Conversation: []Message{greeting}, Greeted: true},
			wantEffects: []Effect{
				AppendMessage{Message: greeting},
				SetSubmitEnabled{Enabled: false},
			},
		},
		{
			name:      "greet only once",
			state:     State{Conversation: []Message{greeting}, Greeted: true},
			event:     Greet{},
			wantState: State{Conversation: []Message{greeting}, Greeted: true},
		},
		{
			name:        "input enables submit",
			state:       State{},
			event:       InputChanged{Text: "he"},
			wantState:   State{Input: "he"},
			wantEffects: []Effect{SetSubmitEnabled{Enabled: true}},
		},
		{
			name:        "blank input disables submit",
			state:       State{Input: "x"},
			event:       InputChanged{Text: "   "},
			wantState:   State{Input: "   "},
			wantEffects: []Effect{SetSubmitEnabled{Enabled: false}},
		},
		{
			name:      "input while pending keeps submit disabled",
			state:     State{Pending: true},
			event:     InputChanged{Text: "next"},
			wantState: State{Pending: true, Input: "next"},
		},
		{
			name:      "submit starts an exchange",
			state:     State{Input: "hi"},
			event:     Submit{Text: "hi"},
			wantState: State{Conversation: []Message{human}, Pending: true},
			wantEffects: []Effect{
				AppendMessage{Message: human},
				ClearInput{},
				SetSubmitEnabled{Enabled: false},
				ShowLoading{},
				SetAgentActive{Active: true},
				RequestCompletion{Text: "hi"},
			},
		},
		{
			name:      "blank submit is ignored",
			state:     State{Input: " \n"},
			event:     Submit{Text: " \n"},
			wantState: State{Input: " \n"},
		},
		{
			name:      "submit while pending is ignored",
			state:     State{Conversation: []Message{human}, Pending: true},
			event:     Submit{Text: "again"},
			wantState: State{Conversation: []Message{human}, Pending: true},
		},
		{
			name:      "success appends the reply",
			state:     State{Conversation: []Message{human}, Pending: true},
			event:     Succeeded{Text: "hello"},
			wantState: State{Conversation: []Message{human, {Role: RoleAssistant, Content: "hello"}}},
			wantEffects: []Effect{
				AppendMessage{Message: Message{Role: RoleAssistant, Content: "hello"}},
				HideLoading{},
				SetAgentActive{Active: false},
				SetSubmitEnabled{Enabled: false},
			},
		},
		{
			name:  "failure appends the fixed message and keeps typed input",
			state: State{Conversation: []Message{human}, Pending: true, Input: "draft"},
			event: Failed{Err: errors.New("boom")},
			wantState: State{
				Conversation: []Message{human, {Role: RoleAssistant, Content: FailureMessage}},
				Input:        "draft",
			},
			wantEffects: []Effect{
				AppendMessage{Message: Message{Role: RoleAssistant, Content: FailureMessage}},
				HideLoading{},
				SetAgentActive{Active: false},
				SetSubmitEnabled{Enabled: true},
			},
		},
		{
			name:      "late result without a pending exchange is ignored",
			state:     State{Conversation: []Message{human}},
			event:     Succeeded{Text: "stale"},
			wantState: State{Conversation: []Message{human}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effects := Transition(tt.state, tt.event)
			assert.Equal(t, tt.wantState, got)
			if diff := cmp.Diff(tt.wantEffects, effects); diff != "" {
				t.Errorf("effects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	conv := make([]Message, 1, 4)
	conv[0] = Message{Role: RoleAssistant, Content: Greeting}
	s := State{Conversation: conv, Greeted: true}

	first, _ := Transition(s, Submit{Text: "a"})
	second, _ := Transition(s, Submit{Text: "b"})

	assert.Len(t, s.Conversation, 1)
	assert.False(t, s.Pending)
	assert.Equal(t, "a", first.Conversation[1].Content)
	assert.Equal(t, "b", second.Conversation[1].Content)
}
