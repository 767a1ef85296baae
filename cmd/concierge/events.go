package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"concierge-be/pkg/events"
	pktNats "concierge-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEventsCommand() *cobra.Command {
	var (
		natsURL   string
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail exchange events published by concierge servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			cc, err := sub.Subscribe(ctx, eventType, "", func(_ context.Context, evt events.Event) error {
				c := color.New(color.FgGreen)
				if evt.EventType() == events.ExchangeFailed {
					c = color.New(color.FgRed)
				}
				data := evt.Payload()
				c.Fprintf(out, "%s %-18s", evt.Timestamp().Format("15:04:05"), evt.EventType())
				fmt.Fprintf(out, " backend=%v origin=%v duration_ms=%v", data["backend"], data["origin"], data["duration_ms"])
				if e, ok := data["error"].(string); ok && e != "" {
					fmt.Fprintf(out, " error=%q", e)
				}
				fmt.Fprintln(out)
				return nil
			})
			if err != nil {
				return err
			}
			defer cc.Stop()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "nats://localhost:4222", "NATS server URL")
	cmd.Flags().StringVar(&eventType, "type", "", "Only show this event type (EXCHANGE_COMPLETED or EXCHANGE_FAILED)")
	return cmd
}
