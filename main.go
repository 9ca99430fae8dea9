package main

import (
	"os"

	"github.com/cottand/strata/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "strata [subcommand]",
	Short:        "strata\n a verifier middle-end that compiles the heap away",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.ElabCmd)
}
