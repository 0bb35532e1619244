package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a pending piece of work the advisor can recommend.
type Task struct {
	ID             uuid.UUID
	Name           string
	Deadline       *time.Time
	EstimatedHours *float64
	Difficulty     string
	Done           bool
}

// NewTask builds a pending task with a fresh identifier.
func NewTask(name string, deadline *time.Time, hours *float64, difficulty string) Task {
	return Task{
		ID:             uuid.New(),
		Name:           name,
		Deadline:       deadline,
		EstimatedHours: hours,
		Difficulty:     difficulty,
	}
}

// HasDeadline reports whether the task carries a deadline.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil
}

// HasEstimate reports whether the task carries an effort estimate.
func (t Task) HasEstimate() bool {
	return t.EstimatedHours != nil
}

// Pending filters out completed tasks, keeping the original order.
func Pending(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

// FindTask returns the task with the given identifier.
func FindTask(tasks []Task, id uuid.UUID) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Difficulty is the coarse effort class of a task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ClassifyDifficulty maps a free-text label onto easy/medium/hard.
// Exact enum values win; otherwise substring heuristics apply and
// anything unrecognised is medium.
func ClassifyDifficulty(raw string) Difficulty {
	d := strings.ToLower(strings.TrimSpace(raw))
	switch Difficulty(d) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(d)
	}

	if containsAny(d, "easy", "low", "simple") {
		return DifficultyEasy
	}
	if containsAny(d, "hard", "high", "difficult") {
		return DifficultyHard
	}
	return DifficultyMedium
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
