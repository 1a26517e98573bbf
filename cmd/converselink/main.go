package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "converselink",
	Short:        "Realtime voice and text client for conversational agents",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newAgentsCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
