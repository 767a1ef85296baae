package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "concierge",
		Short: "Terminal host and tools for the concierge assistant widget",
		Long: `concierge runs the assistant widget in a terminal, against a concierge
server, an LLM provider directly, or in demo mode when no credential is set.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newChatCommand(), newCheckCommand(), newEventsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
