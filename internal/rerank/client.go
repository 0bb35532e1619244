// Package rerank asks a language model to rank a shortlist of tasks and
// validates what comes back.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
)

// Defaults for the ranking call.
const (
	DefaultModel       = "o4-mini"
	DefaultTimeout     = 20 * time.Second
	DefaultTemperature = 0.2
	DefaultSeed        = 7
)

// Options tune the completion request.
type Options struct {
	Model       string
	Timeout     time.Duration
	Temperature float64
	Seed        *int
	MaxTokens   *int
}

// Client builds ranking prompts and sends them to a Completer.
type Client struct {
	completer ports.Completer
	opts      Options
}

// NewClient fills unset options with defaults.
func NewClient(completer ports.Completer, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Seed == nil {
		seed := DefaultSeed
		opts.Seed = &seed
	}
	return &Client{completer: completer, opts: opts}
}

// Request sends the shortlist and returns the raw model text.
func (c *Client) Request(ctx context.Context, tasks []domain.Task, state domain.UserState) (string, error) {
	if len(tasks) == 0 {
		return "", domain.ErrEmptyCandidates
	}
	if c.completer == nil {
		return "", domain.ErrMissingCredential
	}

	messages, err := BuildMessages(tasks, state)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	completion, err := c.completer.Complete(ctx, domain.CompletionRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Seed:        c.opts.Seed,
	})
	if err != nil {
		var transport *domain.TransportError
		if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &transport) {
			err = &domain.TransportError{Timeout: true, Err: err}
		}
		return "", fmt.Errorf("rerank request: %w", err)
	}
	return completion.Text, nil
}

// Rerank runs request, parse and resolve against the shortlist.
func (c *Client) Rerank(ctx context.Context, shortlist []domain.Task, state domain.UserState) (domain.RankingResult, domain.Task, error) {
	text, err := c.Request(ctx, shortlist, state)
	if err != nil {
		return domain.RankingResult{}, domain.Task{}, err
	}

	result, err := Parse(text)
	if err != nil {
		return domain.RankingResult{}, domain.Task{}, fmt.Errorf("parse rerank reply: %w", err)
	}
	return Resolve(result, shortlist)
}
