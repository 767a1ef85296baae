package main

import (
	"fmt"
	"io"
	"sync"

	"concierge-be/pkg/panel"
	"concierge-be/pkg/session"

	"github.com/fatih/color"
)

// terminalHost prints widget effects as a transcript.
type terminalHost struct {
	mu  sync.Mutex
	out io.Writer

	name      string
	assistant *color.Color
	human     *color.Color
	muted     *color.Color
}

func newTerminalHost(out io.Writer, name string) *terminalHost {
	if name == "" {
		name = "Assistant"
	}
	return &terminalHost{
		out:       out,
		name:      name,
		assistant: color.New(color.FgCyan),
		human:     color.New(color.FgGreen),
		muted:     color.New(color.FgHiBlack),
	}
}

func (h *terminalHost) RenderMessage(msg session.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg.Role == session.RoleHuman {
		h.human.Fprintf(h.out, "you> %s\n", msg.Content)
		return
	}
	h.assistant.Fprintf(h.out, "%s> %s\n", h.name, msg.Content)
}

func (h *terminalHost) ClearInput() {}

func (h *terminalHost) SetSubmitEnabled(bool) {}

func (h *terminalHost) ShowLoading() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted.Fprintf(h.out, "%s is typing...\n", h.name)
}

func (h *terminalHost) HideLoading() {}

func (h *terminalHost) SetAgentActive(bool) {}

func (h *terminalHost) SetPaintable(bool) {}

func (h *terminalHost) SetOpen(open bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state := "closed"
	if open {
		state = "open"
	}
	h.muted.Fprintf(h.out, "[panel %s]\n", state)
}

func (h *terminalHost) RequestFrame(fn func()) {
	panel.NextFrame(fn)
}

func (h *terminalHost) notice(format string, a ...interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.muted.Fprintln(h.out, fmt.Sprintf(format, a...))
}
