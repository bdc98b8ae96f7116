package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/swarmlab/convene/internal/assembly"
	"github.com/swarmlab/convene/internal/config"
	"github.com/swarmlab/convene/internal/coordinator"
	"github.com/swarmlab/convene/internal/history"
	"github.com/swarmlab/convene/internal/llm"
	"github.com/swarmlab/convene/pkg/models"
)

var (
	runDir     string
	runAgents  []string
	runTaskID  string
	runTimeout time.Duration
	runLLM     bool
	runJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run <assembly>",
	Short: "Execute an assembly template against a pool of agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dir := runDir
		if dir == "" {
			dir = cfg.Templates.Dir
		}
		loader, err := assembly.NewLoader(dir)
		if err != nil {
			return err
		}
		def, ok := loader.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown assembly %q (available: %s)", args[0], strings.Join(loader.Names(), ", "))
		}

		opts := []coordinator.Option{
			coordinator.WithRetryPolicy(coordinator.RetryPolicy{
				MaxAttempts:    cfg.Retry.MaxAttempts,
				InitialBackoff: cfg.Retry.InitialBackoff,
			}),
			coordinator.WithHistoryLimit(cfg.History.Limit),
		}

		if cfg.History.DBPath != "" {
			store, err := history.Open(cfg.History.DBPath)
			if err != nil {
				return fmt.Errorf("open history db: %w", err)
			}
			defer store.Close()
			opts = append(opts, coordinator.WithHistorySink(store))
		}

		if runLLM {
			apiKey, err := config.GetAPIKey(cfg)
			if err != nil {
				return err
			}
			executor, err := llm.New(llm.Config{
				APIKey:    apiKey,
				Model:     cfg.Anthropic.Model,
				MaxTokens: cfg.Anthropic.MaxTokens,
			})
			if err != nil {
				return err
			}
			opts = append(opts, coordinator.WithExecutor(executor))
		}

		c := coordinator.New(opts...)
		defer c.Close()

		agents, err := parseAgents(runAgents, def)
		if err != nil {
			return err
		}
		for _, agent := range agents {
			c.RegisterAgent(agent)
		}

		timeout := runTimeout
		if timeout == 0 {
			timeout = def.SuccessCriteria.Timeout.Std()
		}

		result, err := c.ExecuteAssembly(context.Background(), &def.Assembly, coordinator.ExecutionContext{
			TaskID:  runTaskID,
			Timeout: timeout,
		})
		if err != nil {
			return err
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			printResult(result)
		}

		if result.Status != models.StatusCompleted {
			return fmt.Errorf("run %s: %s", result.Status, result.ErrorMessage)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", "", "Templates directory (defaults to the configured one)")
	runCmd.Flags().StringArrayVarP(&runAgents, "agent", "a", nil, "Agent as name=cap1,cap2 (repeatable; defaults to one agent per role)")
	runCmd.Flags().StringVar(&runTaskID, "task-id", "", "Task id to register the run under")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Run timeout (defaults to the template's)")
	runCmd.Flags().BoolVar(&runLLM, "llm", false, "Execute steps with the Anthropic API instead of the stub executor")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the result as JSON")
}

// parseAgents builds the pool from --agent flags. With no flags, one
// agent per role is synthesized with exactly that role's capabilities.
func parseAgents(specs []string, def *assembly.Definition) ([]*models.Agent, error) {
	if len(specs) == 0 {
		agents := make([]*models.Agent, len(def.Roles))
		for i, role := range def.Roles {
			agents[i] = &models.Agent{
				ID:           uuid.New().String()[:8],
				Name:         role.Name + "-agent",
				Capabilities: role.Capabilities,
				Status:       models.AgentStatusAvailable,
			}
		}
		return agents, nil
	}

	agents := make([]*models.Agent, 0, len(specs))
	for _, spec := range specs {
		name, caps, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid agent spec %q (want name=cap1,cap2)", spec)
		}
		agent := &models.Agent{
			ID:     uuid.New().String()[:8],
			Name:   name,
			Status: models.AgentStatusAvailable,
		}
		for _, cap := range strings.Split(caps, ",") {
			if cap = strings.TrimSpace(cap); cap != "" {
				agent.Capabilities = append(agent.Capabilities, cap)
			}
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func printResult(result *models.AssemblyResult) {
	status := color.GreenString(string(result.Status))
	switch result.Status {
	case models.StatusFailed:
		status = color.RedString(string(result.Status))
	case models.StatusCancelled:
		status = color.YellowString(string(result.Status))
	}

	bold := color.New(color.Bold)
	bold.Printf("%s", result.AssemblyName)
	fmt.Printf(" (task %s): %s in %s\n", result.TaskID, status, result.Duration.Round(time.Millisecond))
	if result.ErrorMessage != "" {
		fmt.Printf("  %s\n", result.ErrorMessage)
	}

	if len(result.Outputs) > 0 {
		bold.Println("Outputs")
		for key, value := range result.Outputs {
			fmt.Printf("  %s: %v\n", color.CyanString(key), value)
		}
	}
	if len(result.Contributions) > 0 {
		bold.Println("Contributions")
		for _, contribution := range result.Contributions {
			fmt.Printf("  %s as %s (quality %.2f, %s)\n",
				contribution.AgentID, contribution.RoleName,
				contribution.QualityScore, contribution.Duration.Round(time.Millisecond))
		}
	}
}
