// Package explain turns a chosen task into a short coaching message.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
	"FlowAdvisor/internal/rerank"
)

const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 300
)

const systemPrompt = `You are a concise, supportive focus coach. Explain in 1-3 sentences why the suggested task is a good choice right now given the user's current emotion, the deadline urgency, the time needed, and the difficulty. Be empathetic but direct and include one actionable next step (for example "start with a 10-minute focus block"). Output plain text only, no bullets and no markdown.`

const heuristics = `Heuristics used by the advisor:
- Prioritize earlier deadlines; overdue and due-today tasks move up.
- Match difficulty to mood: stressed -> easy > medium > hard, neutral -> medium first, energized -> hard > medium > easy.
- Prefer short tasks when stressed or tired.`

// Options tune the explanation call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Explainer asks a Completer why a task fits the user's state.
type Explainer struct {
	completer ports.Completer
	opts      Options
}

// New fills unset options with defaults.
func New(completer ports.Completer, opts Options) *Explainer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Explainer{completer: completer, opts: opts}
}

type explainedTask struct {
	Name           string   `json:"name"`
	Deadline       string   `json:"deadline"`
	EstimatedHours *float64 `json:"estimatedHours"`
	Difficulty     string   `json:"difficulty"`
}

// Explain returns a plain-text explanation for task.
func (e *Explainer) Explain(ctx context.Context, task domain.Task, state domain.UserState) (string, error) {
	if e == nil || e.completer == nil {
		return "", domain.ErrMissingCredential
	}

	messages, err := buildMessages(task, state)
	if err != nil {
		return "", err
	}

	maxTokens := e.opts.MaxTokens
	completion, err := e.completer.Complete(ctx, domain.CompletionRequest{
		Model:       e.opts.Model,
		Messages:    messages,
		Temperature: e.opts.Temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}

func buildMessages(task domain.Task, state domain.UserState) ([]domain.ChatMessage, error) {
	payload := explainedTask{
		Name:           rerank.PlainText(task.Name),
		Deadline:       rerank.FormatDeadline(task.Deadline),
		EstimatedHours: task.EstimatedHours,
		Difficulty:     string(domain.ClassifyDifficulty(task.Difficulty)),
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal explained task: %w", err)
	}

	emotion := strings.TrimSpace(state.Emotion)
	if emotion == "" {
		emotion = "neutral"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CurrentEmotion: %s\n", emotion)
	if state.HeartRateBPM != nil {
		fmt.Fprintf(&b, "HeartRateBPM: %.0f\n", *state.HeartRateBPM)
	}
	if state.HRVSDNNms != nil {
		fmt.Fprintf(&b, "HRVSDNNms: %.0f\n", *state.HRVSDNNms)
	}
	fmt.Fprintf(&b, "RecommendedTask:\n%s\n\n%s", raw, heuristics)

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: b.String()},
	}, nil
}
