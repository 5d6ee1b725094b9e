// Package anthropic provides an AgentClient backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/vaibhavi8/autoplay/agent"
	"github.com/vaibhavi8/autoplay/core"
)

// Options configures the Anthropic client (model id, max tokens,
// temperature, API key, display name).
type Options struct {
	Name        string
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client asks Claude for the next action plan.
type Client struct {
	client *anthropic.Client
	opts   Options
}

var _ core.AgentClient = (*Client)(nil)

// New creates a Client using the official SDK client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Name:        "Claude",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Client{client: &client, opts: opts}
}

// NewFromClient creates a Client from an existing SDK client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Name:        "Claude",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// Name returns the label used in commentary and logs.
func (c *Client) Name() string { return c.opts.Name }

// Decide implements core.AgentClient. Deadline expiry maps to
// core.ErrAgentTimeout, any other API failure to core.ErrAgent.
func (c *Client) Decide(ctx context.Context, state core.GameState, role core.Role) (core.ActionPlan, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: agent.SystemPrompt(role)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(agent.UserPrompt(state))),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.ActionPlan{}, fmt.Errorf("%w: %v", core.ErrAgentTimeout, err)
		}
		return core.ActionPlan{}, fmt.Errorf("%w: anthropic api: %v", core.ErrAgent, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return agent.ParsePlan(text)
}
