package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Helpdesk ticketing backend",
	Long: `Helpdesk ticketing backend. Usage:

	helpdesk serve
	helpdesk migrate up|down
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
