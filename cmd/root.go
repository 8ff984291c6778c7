package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "warden runs coding agents behind guarded invocations",
	Long: "warden validates the environment, assembles a decision-panel prompt,\n" +
		"invokes the configured coding agent with an immutable safety flag set,\n" +
		"and validates the artifacts the agent leaves behind.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(decisionCmd)
}
