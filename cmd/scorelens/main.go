// Command scorelens is the CLI entry point into the analysis pipeline,
// wrapping internal/analysis in a Cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "scorelens",
		Short: "Structural analysis and visual-scheme recommendation for symbolic scores",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file overriding the defaults")

	cmd.AddCommand(
		newAnalyzeCmd(&configPath),
		newConvertMidiCmd(),
		newAlignCmd(),
		newRecommendCmd(&configPath),
		newRecordCmd(),
	)
	return cmd
}
