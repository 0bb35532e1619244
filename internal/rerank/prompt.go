package rerank

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FlowAdvisor/internal/domain"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

const systemPrompt = `You are a rigorous task recommender for a focus app.
Return STRICT JSON ONLY, no code fences, no extra text.
JSON shape:
{
  "chosen": { "chosenEventId": "<UUID>", "reason": "<short>" },
  "ranking": [
    { "eventId": "<UUID>", "score": <number|null>, "reason": "<short>" }
  ]
}
Rules:
- Choose ONE best task to start now.
- Prefer: near deadlines, fit to emotion/physiology, reasonable difficulty,
  and quick wins when stressed.
- All ids must be from candidates.`

const userPreamble = "Rank these tasks and select one. Keep JSON strictly valid."

type promptContext struct {
	Emotion      string   `json:"emotion"`
	HeartRateBPM *float64 `json:"heartRateBPM"`
	HRVSDNNms    *float64 `json:"hrvSDNNms"`
}

type promptCandidate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Deadline       *string  `json:"deadline"`
	EstimatedHours *float64 `json:"estimatedHours"`
	Difficulty     *string  `json:"difficulty"`
}

type promptPayload struct {
	Now        string            `json:"now"`
	Context    promptContext     `json:"context"`
	Candidates []promptCandidate `json:"candidates"`
}

// BuildMessages renders the system instruction and the user message that
// embeds the timestamp, user context and the reduced candidate list.
func BuildMessages(tasks []domain.Task, state domain.UserState) ([]domain.ChatMessage, error) {
	payload := promptPayload{
		Now: state.Now.UTC().Format(isoMillis),
		Context: promptContext{
			Emotion:      state.Emotion,
			HeartRateBPM: state.HeartRateBPM,
			HRVSDNNms:    state.HRVSDNNms,
		},
		Candidates: make([]promptCandidate, 0, len(tasks)),
	}
	for _, t := range tasks {
		payload.Candidates = append(payload.Candidates, reduceTask(t))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt payload: %w", err)
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: userPreamble + "\n" + string(raw)},
	}, nil
}

// reduceTask keeps only what the model needs to rank a task.
func reduceTask(t domain.Task) promptCandidate {
	c := promptCandidate{
		ID:             t.ID.String(),
		Name:           PlainText(t.Name),
		EstimatedHours: t.EstimatedHours,
	}
	if c.Name == "" {
		c.Name = "Untitled"
	}
	if t.Deadline != nil {
		d := t.Deadline.UTC().Format(isoMillis)
		c.Deadline = &d
	}
	if diff := PlainText(t.Difficulty); diff != "" {
		c.Difficulty = &diff
	}
	return c
}

// PlainText drops markup from user-entered labels and collapses whitespace.
func PlainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// FormatDeadline renders a deadline the way prompts and listings show it.
func FormatDeadline(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(isoMillis)
}
