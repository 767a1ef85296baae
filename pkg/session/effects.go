package session

// Effect is a UI-visible side effect produced by Transition.
type Effect interface {
	EffectType() string
}

type AppendMessage struct {
	Message Message `json:"message"`
}

type ClearInput struct{}

type SetSubmitEnabled struct {
	Enabled bool `json:"enabled"`
}

type ShowLoading struct{}

type HideLoading struct{}

type SetAgentActive struct {
	Active bool `json:"active"`
}

// RequestCompletion is consumed by the Controller, not the Renderer.
type RequestCompletion struct {
	Text string `json:"text"`
}

func (AppendMessage) EffectType() string { return "append_message" }
func (ClearInput) EffectType() string { return "clear_input" }
func (SetSubmitEnabled) EffectType() string { return "set_submit_enabled" }
func (ShowLoading) EffectType() string { return "show_loading" }
func (HideLoading) EffectType() string { return "hide_loading" }
func (SetAgentActive) EffectType() string { return "set_agent_active" }
func (RequestCompletion) EffectType() string { return "request_completion" }

// Renderer is the capability surface a host provides. Calls arrive in effect
// order and never concurrently; implementations must not call back into the
// Controller.
type Renderer interface {
	RenderMessage(msg Message)
	ClearInput()
	SetSubmitEnabled(enabled bool)
	ShowLoading()
	HideLoading()
	SetAgentActive(active bool)
}

// Apply executes one render effect. Non-render effects are ignored.
func Apply(r Renderer, e Effect) {
	switch eff := e.(type) {
	case AppendMessage:
		r.RenderMessage(eff.Message)
	case ClearInput:
		r.ClearInput()
	case SetSubmitEnabled:
		r.SetSubmitEnabled(eff.Enabled)
	case ShowLoading:
		r.ShowLoading()
	case HideLoading:
		r.HideLoading()
	case SetAgentActive:
		r.SetAgentActive(eff.Active)
	}
}

// NopRenderer discards every effect.
type NopRenderer struct{}

func (NopRenderer) RenderMessage(Message) {}
func (NopRenderer) ClearInput() {}
func (NopRenderer) SetSubmitEnabled(bool) {}
func (NopRenderer) ShowLoading() {}
func (NopRenderer) HideLoading() {}
func (NopRenderer) SetAgentActive(bool) {}
