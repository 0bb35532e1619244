// Package ranking picks tasks locally: the arg-max ranker and the rule
// pre-filter that shortlists candidates before a remote rerank.
package ranking

import (
	"slices"

	"github.com/google/uuid"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/scoring"
)

// Recorder is told which task won a local pick.
type Recorder interface {
	MarkPicked(id uuid.UUID)
}

// Scored pairs a task with its breakdown and input position.
type Scored struct {
	Task      domain.Task
	Breakdown scoring.Breakdown
	Index     int
}

// Local ranks every candidate with the scoring function.
type Local struct {
	scorer   *scoring.Scorer
	recorder Recorder
}

// NewLocal wires a scorer and an optional recorder.
func NewLocal(scorer *scoring.Scorer, recorder Recorder) *Local {
	return &Local{scorer: scorer, recorder: recorder}
}

// Rank scores all tasks and orders them best first.
// Ties go to the earliest deadline, then to the first-seen task.
func (l *Local) Rank(tasks []domain.Task, state domain.UserState) []Scored {
	scored := make([]Scored, len(tasks))
	for i, t := range tasks {
		scored[i] = Scored{Task: t, Breakdown: l.scorer.Score(t, state), Index: i}
	}
	slices.SortStableFunc(scored, compareScored)
	return scored
}

// Pick returns the best task and records it. The caller passes pending
// tasks only; completion is not re-checked here.
func (l *Local) Pick(tasks []domain.Task, state domain.UserState) (Scored, error) {
	ranked, err := l.PickRanked(tasks, state)
	if err != nil {
		return Scored{}, err
	}
	return ranked[0], nil
}

// PickRanked is Pick that also returns the full ordering it chose from.
func (l *Local) PickRanked(tasks []domain.Task, state domain.UserState) ([]Scored, error) {
	ranked, err := l.RankNonEmpty(tasks, state)
	if err != nil {
		return nil, err
	}
	if l.recorder != nil {
		l.recorder.MarkPicked(ranked[0].Task.ID)
	}
	return ranked, nil
}

// RankNonEmpty is Rank that rejects an empty set and records nothing.
func (l *Local) RankNonEmpty(tasks []domain.Task, state domain.UserState) ([]Scored, error) {
	if len(tasks) == 0 {
		return nil, domain.ErrEmptyCandidateSet
	}
	return l.Rank(tasks, state), nil
}

func compareScored(a, b Scored) int {
	switch {
	case a.Breakdown.Total > b.Breakdown.Total:
		return -1
	case a.Breakdown.Total < b.Breakdown.Total:
		return 1
	}

	if c := compareDeadlines(a.Task, b.Task); c != 0 {
		return c
	}
	return a.Index - b.Index
}

// compareDeadlines puts earlier deadlines first and missing ones last.
func compareDeadlines(a, b domain.Task) int {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return 0
	case a.Deadline == nil:
		return 1
	case b.Deadline == nil:
		return -1
	}
	return a.Deadline.Compare(*b.Deadline)
}

// Entries converts a local ranking into ranking entries with scores.
func Entries(scored []Scored) []domain.RankedEntry {
	entries := make([]domain.RankedEntry, len(scored))
	for i, s := range scored {
		total := s.Breakdown.Total
		entries[i] = domain.RankedEntry{TaskID: s.Task.ID, Score: &total}
	}
	return entries
}
