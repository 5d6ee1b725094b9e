// Package openai provides an AgentClient backed by the OpenAI Chat
// Completions API. Because the endpoint is configurable, the same client
// serves any OpenAI-compatible backend, notably xAI's Grok via its base
// URL.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/vaibhavi8/autoplay/agent"
	"github.com/vaibhavi8/autoplay/core"
)

// Options configures the client.
type Options struct {
	Name        string
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// BaseURL points at an OpenAI-compatible endpoint. Empty keeps the
	// SDK default.
	BaseURL string
}

// Client asks a chat-completions backend for the next action plan.
type Client struct {
	client *openai.Client
	opts   Options
}

var _ core.AgentClient = (*Client)(nil)

// New creates a Client using the official SDK client.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Name:        "Grok",
		Model:       openai.ChatModelGPT4oMini,
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
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &Client{client: &client, opts: opts}
}

// NewFromClient creates a Client from an existing SDK client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Name:        "Grok",
		Model:       openai.ChatModelGPT4oMini,
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
	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(agent.SystemPrompt(role)),
			openai.UserMessage(agent.UserPrompt(state)),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.ActionPlan{}, fmt.Errorf("%w: %v", core.ErrAgentTimeout, err)
		}
		return core.ActionPlan{}, fmt.Errorf("%w: chat completions api: %v", core.ErrAgent, err)
	}
	if len(resp.Choices) == 0 {
		return core.ActionPlan{}, fmt.Errorf("%w: empty completion", core.ErrAgent)
	}
	return agent.ParsePlan(resp.Choices[0].Message.Content)
}
