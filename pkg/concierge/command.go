package concierge

import (
	"context"
	"fmt"
)

type CommandName string

const (
	CommandOpen         CommandName = "open"
	CommandClose        CommandName = "close"
	CommandSubmit       CommandName = "submit"
	CommandInput        CommandName = "input"
	CommandOverlayClick CommandName = "overlay_click"
)

// Command is a host interaction translated into a named request.
type Command struct {
	Name CommandName `json:"command"`
	Text string      `json:"text,omitempty"`
}

// Dispatch runs cmd. Submit blocks until the exchange settles.
func (w *Widget) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case CommandOpen:
		w.Open()
	case CommandClose:
		w.Close()
	case CommandOverlayClick:
		w.OverlayClicked()
	case CommandInput:
		w.Input(cmd.Text)
	case CommandSubmit:
		w.Submit(ctx, cmd.Text)
	default:
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
	return nil
}
