package service

import (
	"time"

	"concierge-be/internal/dto"
	"concierge-be/pkg/panel"
	"concierge-be/pkg/session"

	"github.com/google/uuid"
)

// FramePublisher delivers frames to whoever watches a session.
type FramePublisher interface {
	Publish(frame dto.SessionFrame)
}

// remoteHost renders a hosted widget by streaming its effects as frames.
type remoteHost struct {
	sessionID uuid.UUID
	frames    FramePublisher
}

func newRemoteHost(sessionID uuid.UUID, frames FramePublisher) *remoteHost {
	return &remoteHost{sessionID: sessionID, frames: frames}
}

func (h *remoteHost) emit(frameType string, data any) {
	h.frames.Publish(dto.SessionFrame{
		Type:      frameType,
		SessionId: h.sessionID,
		Data:      data,
		At:        time.Now(),
	})
}

func (h *remoteHost) RenderMessage(msg session.Message) {
	h.emit(session.AppendMessage{}.EffectType(), dto.MessageDTO{Role: string(msg.Role), Content: msg.Content})
}

func (h *remoteHost) ClearInput() {
	h.emit(session.ClearInput{}.EffectType(), nil)
}

func (h *remoteHost) SetSubmitEnabled(enabled bool) {
	h.emit(session.SetSubmitEnabled{}.EffectType(), session.SetSubmitEnabled{Enabled: enabled})
}

func (h *remoteHost) ShowLoading() {
	h.emit(session.ShowLoading{}.EffectType(), nil)
}

func (h *remoteHost) HideLoading() {
	h.emit(session.HideLoading{}.EffectType(), nil)
}

func (h *remoteHost) SetAgentActive(active bool) {
	h.emit(session.SetAgentActive{}.EffectType(), session.SetAgentActive{Active: active})
}

func (h *remoteHost) SetPaintable(paintable bool) {
	h.emit("set_paintable", map[string]bool{"paintable": paintable})
}

func (h *remoteHost) SetOpen(open bool) {
	h.emit("set_open", map[string]bool{"open": open})
}

func (h *remoteHost) RequestFrame(fn func()) {
	panel.NextFrame(fn)
}

func (h *remoteHost) visibilityChanged(from, to panel.Visibility) {
	h.emit("visibility", map[string]string{"from": string(from), "to": string(to)})
}
