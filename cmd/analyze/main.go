// Command analyze runs the résumé matching pipeline from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "analyze",
	Short:         "Match a résumé against job requirements",
	Long:          "Extract skills from a résumé, score it against a catalog job or a posting URL, and report the skill gap with learning resources.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
