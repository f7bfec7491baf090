package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statutecheck",
	Short: "Statute of limitations content site and admin console",
	Long: `statutecheck serves public statute-of-limitations lookup pages
generated from state/issue combinations, and runs the moderated content
console behind them. All content changes are staged in an approval queue
and only reach the live tables after reviewer sign-off.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
