package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// DefaultMaxTokens bounds a single response.
const DefaultMaxTokens = 8192

// ChatTurn is one prior message of a conversation.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Generator produces plans and chat answers. Client is the production
// implementation; tests substitute fakes.
type Generator interface {
	GeneratePlan(ctx context.Context, description string) (*Plan, error)
	Chat(ctx context.Context, system string, history []ChatTurn, question string) (string, error)
}

// Client wraps the Anthropic Messages API.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a Client. An empty model uses DefaultModel and a
// non-positive maxTokens uses DefaultMaxTokens. Extra request options are
// passed to the SDK (base URL, retries).
func NewClient(apiKey, model string, maxTokens int64, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("planner: anthropic API key not set")
	}
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	inner := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Client{inner: inner, model: anthropic.Model(model), maxTokens: maxTokens}, nil
}

const planSystemPrompt = `You are an expert software project planner. Turn the user's project description into an ordered plan of phases and tasks.

Rules:
- Every task has a short unique "ref" such as "T1", "T2".
- "depends_on" lists the refs of tasks that must be finished first.
- Only add a dependency when there is a strong causal reason. Do not add transitive dependencies.
- Never create cycles. A task never depends on itself.
- "priority" is one of low, medium, high, critical.
- "estimate_hours" is a number.

Return ONLY a JSON object with this structure, no commentary:
{
  "summary": "<one paragraph>",
  "phases": [
    {
      "name": "<phase name>",
      "description": "<what the phase achieves>",
      "tasks": [
        {"ref": "T1", "title": "<title>", "description": "<details>", "priority": "medium", "estimate_hours": 4, "depends_on": []}
      ]
    }
  ]
}`

// GeneratePlan asks the model for a plan and parses it.
func (c *Client) GeneratePlan(ctx context.Context, description string) (*Plan, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("planner: project description is required")
	}

	text, err := c.send(ctx, planSystemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(description)),
	})
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(text)
	if err != nil {
		return nil, fmt.Errorf("planner: parse model response: %w", err)
	}
	return plan, nil
}

// Chat sends the conversation so far plus the new question.
func (c *Client) Chat(ctx context.Context, system string, history []ChatTurn, question string) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(question)))

	text, err := c.send(ctx, system, msgs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) send(ctx context.Context, system string, msgs []anthropic.MessageParam) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  msgs,
	})
	if err != nil {
		return "", fmt.Errorf("planner: anthropic API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("planner: empty model response")
	}
	return text.String(), nil
}
