// Package cmd implements the colosseum CLI: colosseum run drives one
// match end to end; colosseum replay show/tail inspect a replay journal.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/h3nnn4n/colosseum/internal/term"
)

var rootCmd = &cobra.Command{
	Use:   "colosseum",
	Short: "colosseum runs programmatic-game tournament matches",
	Long: `colosseum is the match engine and agent-process supervisor for
programmatic-game tournaments: it spawns agents as isolated child
processes, drives a per-tick simulation over a line-delimited JSON
channel, enforces protocol and timing discipline, and records a
complete replay.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by colosseum --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default colosseum.yaml in the working directory)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cobra.OnInitialize(func() {
		if noColor, _ := rootCmd.Flags().GetBool("no-color"); noColor {
			term.Disable(true)
		}
	})
}

// Fatal prints an error and exits. Used throughout for user-facing CLI
// errors — never log.Fatal inside library code.
func Fatal(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+msg+"\n", args...)
	os.Exit(1)
}
