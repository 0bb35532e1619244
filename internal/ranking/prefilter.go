package ranking

import (
	"cmp"
	"slices"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/scoring"
)

// DefaultTopK is the shortlist size sent to the remote reranker.
const DefaultTopK = 5

// PreFilter shortlists candidates with the rule score.
type PreFilter struct {
	scorer *scoring.Scorer
}

// NewPreFilter uses the given scorer, or the rule preset when nil.
func NewPreFilter(scorer *scoring.Scorer) *PreFilter {
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.RuleConfig(), nil)
	}
	return &PreFilter{scorer: scorer}
}

// Shortlist returns the max(1, topK) best tasks, best first. Equal scores
// keep their input order.
func (p *PreFilter) Shortlist(tasks []domain.Task, state domain.UserState, topK int) []domain.Task {
	if len(tasks) == 0 {
		return nil
	}

	type entry struct {
		task  domain.Task
		score float64
	}
	entries := make([]entry, len(tasks))
	for i, t := range tasks {
		entries[i] = entry{task: t, score: p.scorer.Score(t, state).Total}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.score, a.score)
	})

	n := min(max(1, topK), len(entries))
	out := make([]domain.Task, n)
	for i := range out {
		out[i] = entries[i].task
	}
	return out
}
