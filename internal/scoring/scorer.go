// Package scoring implements the deterministic multi-factor task score.
package scoring

import (
	"github.com/google/uuid"

	"FlowAdvisor/internal/domain"
)

// PenaltySource supplies the repetition penalty for a task identifier.
type PenaltySource interface {
	RepetitionPenalty(id uuid.UUID) float64
}

// Breakdown holds the raw component scores and the weighted total.
// DueToday and Overdue are the modifiers actually applied.
type Breakdown struct {
	Urgency       float64
	DurationFit   float64
	DifficultyFit float64
	QuickWins     float64
	Variety       float64
	DueToday      float64
	Overdue       float64
	Total         float64
}

// Scorer applies one Config to tasks. It only reads its PenaltySource.
type Scorer struct {
	cfg       Config
	penalties PenaltySource
}

// NewScorer builds a scorer; penalties may be nil.
func NewScorer(cfg Config, penalties PenaltySource) *Scorer {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	return &Scorer{cfg: cfg, penalties: penalties}
}

// Config returns the configuration in use.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score computes the breakdown of one task for one user state.
func (s *Scorer) Score(task domain.Task, state domain.UserState) Breakdown {
	w := s.cfg.Weights
	bucket := domain.ClassifyEmotion(state.Emotion)

	var bd Breakdown

	bd.Urgency = MissingUrgency
	if task.Deadline != nil {
		bd.Urgency = Urgency(*task.Deadline, state.Now, s.cfg.HorizonDays, s.cfg.Overdue)

		dueToday, overdue := DateFlags(*task.Deadline, state.Now)
		if dueToday {
			bd.DueToday = w.DueToday
		}
		if overdue && !(dueToday && s.cfg.ExclusiveDateBoost) {
			bd.Overdue = w.Overdue
		}
	}

	bd.QuickWins = MissingQuickWins
	bd.DurationFit = MissingDurationFit
	if task.EstimatedHours != nil {
		hours := *task.EstimatedHours
		bd.QuickWins = QuickWins(hours)
		if s.cfg.Duration == DurationBucketed {
			bd.DurationFit = bd.QuickWins
		} else {
			bd.DurationFit = DurationFit(hours, TargetDuration(state))
		}
	}

	bd.DifficultyFit = DifficultyFit(domain.ClassifyDifficulty(task.Difficulty), bucket)
	if s.cfg.PhysiologyTilt {
		bd.DifficultyFit = clamp(bd.DifficultyFit+PhysiologyTilt(state.HeartRateBPM, state.HRVSDNNms), 0, 1)
	}

	if s.penalties != nil {
		bd.Variety = s.penalties.RepetitionPenalty(task.ID)
	}

	bd.Total = w.Urgency*bd.Urgency +
		w.DurationFit*bd.DurationFit +
		w.DifficultyFit*bd.DifficultyFit +
		w.QuickWins*bd.QuickWins +
		w.Variety*bd.Variety +
		bd.DueToday + bd.Overdue

	return bd
}
