package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"concierge-be/internal/pkg/logger"
	"concierge-be/pkg/concierge"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func newChatCommand() *cobra.Command {
	var (
		configPath string
		serverURL  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Reads one message per line from stdin. Lines starting with a slash are
commands: /open, /close and /quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg := concierge.Config{}
			if configPath != "" {
				loaded, err := concierge.LoadConfigFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			level := zapcore.WarnLevel
			if verbose {
				level = zapcore.DebugLevel
			}
			log := logger.NewConsoleLogger(level)
			defer log.Sync()

			host := newTerminalHost(cmd.OutOrStdout(), cfg.Name)
			widget, err := buildWidget(ctx, cfg, host, serverURL, log)
			if err != nil {
				return err
			}
			host.notice("backend: %s", widget.Backend())

			return runChat(ctx, widget, bufio.NewScanner(cmd.InOrStdin()))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Widget config file (YAML or JSON)")
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Concierge server base URL; validated before use")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	return cmd
}

func buildWidget(ctx context.Context, cfg concierge.Config, host concierge.Host, serverURL string, log logger.ILogger) (*concierge.Widget, error) {
	if serverURL == "" {
		return concierge.NewStandalone(ctx, cfg, host, concierge.WithLogger(log))
	}

	builder, err := concierge.ValidateServer(ctx, serverURL, concierge.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return builder.New(ctx, cfg, host)
}

func runChat(ctx context.Context, widget *concierge.Widget, in *bufio.Scanner) error {
	widget.Load()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for in.Scan() {
			lines <- in.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return in.Err()
			}

			switch strings.TrimSpace(line) {
			case "/quit", "/exit":
				return nil
			case "/open":
				widget.Open()
				continue
			case "/close":
				widget.Close()
				continue
			}

			// Lines are handled one at a time, so nothing is pending here.
			widget.Input(line)
			widget.Submit(ctx, line)
		}
	}
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <config>",
		Short: "Validate a widget config file and print the merged result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := concierge.LoadConfigFile(args[0])
			if err != nil {
				return err
			}
			merged := cfg.Merge()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:       %s\n", merged.Name)
			fmt.Fprintf(out, "tone:       %s\n", merged.Tone)
			fmt.Fprintf(out, "strict:     %t\n", merged.Strict)
			fmt.Fprintf(out, "backend:    %s\n", orDefault(string(merged.Backend), "auto"))
			fmt.Fprintf(out, "fullscreen: %t\n", merged.IsFullScreen())
			for i, s := range merged.Sources {
				fmt.Fprintf(out, "source %d:   %s %s %v\n", i, s.Kind, s.URL, s.Paths)
			}
			return nil
		},
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
