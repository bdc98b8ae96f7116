package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swarmlab/convene/internal/decompose"
	"github.com/swarmlab/convene/pkg/models"
)

var (
	planType string
	planJSON bool
)

var planCmd = &cobra.Command{
	Use:   "plan <description>",
	Short: "Decompose a task into an ordered plan of subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := decompose.New()
		result, err := d.Decompose(args[0], models.TaskType(planType), nil)
		if err != nil {
			return err
		}

		if planJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printPlan(result)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planType, "type", "t", "development", "Task type (development, research, analysis, testing, documentation, architecture)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
}

func printPlan(result *models.DecompositionResult) {
	bold := color.New(color.Bold)
	bold.Printf("Plan for: %s\n", result.OriginalTask)
	fmt.Printf("Tasks: %d, estimated effort: %d\n\n", len(result.Subtasks), result.EstimatedTotalEffort)

	byID := make(map[string]*models.Task, len(result.Subtasks))
	for _, task := range result.Subtasks {
		byID[task.ID] = task
	}
	onPath := make(map[string]bool, len(result.CriticalPath))
	for _, id := range result.CriticalPath {
		onPath[id] = true
	}

	for i, batch := range result.ExecutionOrder {
		bold.Printf("Batch %d\n", i+1)
		for _, id := range batch {
			task := byID[id]
			if task == nil {
				continue
			}
			marker := " "
			if onPath[id] {
				marker = color.YellowString("*")
			}
			fmt.Printf("  %s %s  %s (effort %d, %s)\n",
				marker, color.CyanString(id), task.Title, task.EstimatedEffort, task.Priority)
			if len(task.RequiredCapabilities) > 0 {
				fmt.Printf("      capabilities: %s\n", strings.Join(task.RequiredCapabilities, ", "))
			}
		}
	}

	fmt.Printf("\n%s critical path: %s\n", color.YellowString("*"), strings.Join(result.CriticalPath, " -> "))
}
