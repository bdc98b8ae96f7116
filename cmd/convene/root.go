package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "convene",
	Short: "Multi-agent task orchestration",
	Long: `Convene turns high-level tasks into dependency graphs of subtasks,
assigns agents to assembly roles, executes workflows against them, and
reconciles the agents' outputs into a single result.

Core capabilities:
- Decomposes work into batched, dependency-ordered subtasks
- Runs reusable assembly templates against a pool of agents
- Aggregates multiple agents' outputs under selectable strategies
- Records every run in a queryable execution history`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(assembliesCmd)
	rootCmd.AddCommand(versionCmd)
}
