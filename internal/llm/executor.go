// Package llm provides an Anthropic-backed step executor: each workflow
// step becomes one model call whose JSON reply is the step's output map.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/swarmlab/convene/internal/coordinator"
	"github.com/swarmlab/convene/pkg/models"
)

const systemPrompt = `You are one agent inside a multi-agent assembly. You are given your role, the action to perform, and the task context. Perform the action and reply with a single JSON object mapping output names to values. Reply with JSON only, no prose.`

// Executor implements the coordinator's step-executor contract on the
// Anthropic Messages API.
type Executor struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// Config contains configuration for creating an Executor.
type Config struct {
	// APIKey is the Anthropic API key.
	APIKey string
	// Model is the Claude model to use. Defaults to Sonnet.
	Model string
	// MaxTokens caps the reply size. Defaults to 4096.
	MaxTokens int
}

// New creates an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Executor{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ExecuteStep renders the step into a prompt, calls the model, and
// parses the JSON object reply into the step's output map.
func (e *Executor) ExecuteStep(ctx context.Context, step models.Step, agent *models.Agent, execCtx coordinator.ExecutionContext) (map[string]any, error) {
	prompt, err := renderPrompt(step, agent, execCtx)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			reply.WriteString(variant.Text)
		}
	}

	outputs, err := parseOutputs(reply.String())
	if err != nil {
		return nil, fmt.Errorf("step %s/%s: %w", step.Role, step.Action, err)
	}
	return outputs, nil
}

// renderPrompt builds the user prompt for one step.
func renderPrompt(step models.Step, agent *models.Agent, execCtx coordinator.ExecutionContext) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", step.Role)
	fmt.Fprintf(&b, "Action: %s\n", step.Action)
	if agent != nil {
		fmt.Fprintf(&b, "Agent: %s (capabilities: %s)\n", agent.Name, strings.Join(agent.Capabilities, ", "))
	}

	if len(step.Params) > 0 {
		params, err := json.Marshal(step.Params)
		if err != nil {
			return "", fmt.Errorf("marshal step params: %w", err)
		}
		fmt.Fprintf(&b, "Parameters: %s\n", params)
	}
	if len(execCtx.Params) > 0 {
		params, err := json.Marshal(execCtx.Params)
		if err != nil {
			return "", fmt.Errorf("marshal context params: %w", err)
		}
		fmt.Fprintf(&b, "Task context: %s\n", params)
	}

	b.WriteString("\nReply with the JSON object of your outputs.")
	return b.String(), nil
}

// parseOutputs extracts the JSON object from a model reply, tolerating
// a markdown code fence around it.
func parseOutputs(reply string) (map[string]any, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Fall back to the outermost braces when the model added prose.
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in reply")
		}
		text = text[start : end+1]
	}

	var outputs map[string]any
	if err := json.Unmarshal([]byte(text), &outputs); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("empty output object in reply")
	}
	return outputs, nil
}
