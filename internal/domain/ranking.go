package domain

import "github.com/google/uuid"

// Choice is the single task picked by a ranking pass.
type Choice struct {
	TaskID uuid.UUID
	Reason string
}

// RankedEntry is one line of a ranking; Score is optional.
type RankedEntry struct {
	TaskID uuid.UUID
	Score  *float64
	Reason string
}

// RankingResult is the validated outcome of a remote rerank.
type RankingResult struct {
	Chosen  Choice
	Ranking []RankedEntry
}

// Source tells which path produced a recommendation.
type Source string

const (
	SourceHybrid Source = "hybrid"
	SourceLocal  Source = "local"
	SourceNone   Source = "none"
)

// Recommendation is what the advisor surfaces to the user.
type Recommendation struct {
	Task        *Task
	Reason      string
	Note        string
	Explanation string
	Source      Source
	Ranking     []RankedEntry
}

// Empty reports whether there was nothing to recommend.
func (r Recommendation) Empty() bool {
	return r.Source == SourceNone || r.Task == nil
}
