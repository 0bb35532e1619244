package scoring

import (
	"fmt"
	"strings"
)

// OverduePolicy decides the urgency of a task whose deadline has passed.
type OverduePolicy int

const (
	// OverdueClampToZero scores overdue urgency as 0; the Overdue weight
	// is added on top (a penalty in the algorithm preset).
	OverdueClampToZero OverduePolicy = iota
	// OverdueClampToOne scores overdue urgency as 1; the Overdue weight
	// is added on top (a boost in the rule preset).
	OverdueClampToOne
)

func (p OverduePolicy) String() string {
	if p == OverdueClampToOne {
		return "clampToOne"
	}
	return "clampToZero"
}

// DurationFitMode decides how the duration-fit component is computed.
type DurationFitMode int

const (
	// DurationTargetDistance scores 1/(1+(estimate-target)^2) around a
	// target derived from emotion and physiology.
	DurationTargetDistance DurationFitMode = iota
	// DurationBucketed reuses the quick-wins step function.
	DurationBucketed
)

func (m DurationFitMode) String() string {
	if m == DurationBucketed {
		return "bucketed"
	}
	return "targetDistance"
}

// Preset names accepted by ConfigForMode.
const (
	ModeAlgorithm = "algorithm"
	ModeRule      = "rule"
)

// DefaultHorizonDays is the deadline distance at which urgency reaches zero.
const DefaultHorizonDays = 14.0

// Weights are the coefficients of the linear score. Overdue and DueToday
// are added unweighted when their date condition holds.
type Weights struct {
	Urgency       float64
	DurationFit   float64
	DifficultyFit float64
	QuickWins     float64
	Variety       float64
	Overdue       float64
	DueToday      float64
}

// WeightOverrides carries optional replacements for individual weights.
type WeightOverrides struct {
	Urgency       *float64 `yaml:"urgency"`
	DurationFit   *float64 `yaml:"durationFit"`
	DifficultyFit *float64 `yaml:"difficultyFit"`
	QuickWins     *float64 `yaml:"quickWins"`
	Variety       *float64 `yaml:"variety"`
	Overdue       *float64 `yaml:"overdue"`
	DueToday      *float64 `yaml:"dueToday"`
}

// Apply returns a copy of w with every set override replaced.
func (w Weights) Apply(o WeightOverrides) Weights {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&w.Urgency, o.Urgency)
	set(&w.DurationFit, o.DurationFit)
	set(&w.DifficultyFit, o.DifficultyFit)
	set(&w.QuickWins, o.QuickWins)
	set(&w.Variety, o.Variety)
	set(&w.Overdue, o.Overdue)
	set(&w.DueToday, o.DueToday)
	return w
}

// Config fully parameterises the scoring function.
type Config struct {
	Weights        Weights
	Overdue        OverduePolicy
	Duration       DurationFitMode
	PhysiologyTilt bool
	HorizonDays    float64
	// ExclusiveDateBoost applies at most one date modifier: DueToday when
	// the deadline falls today, otherwise Overdue.
	ExclusiveDateBoost bool
}

// AlgorithmConfig is the weighted algorithm used by the local ranker.
func AlgorithmConfig() Config {
	return Config{
		Weights: Weights{
			Urgency:       0.45,
			DurationFit:   0.20,
			DifficultyFit: 0.20,
			QuickWins:     0.10,
			Variety:       0.05,
			Overdue:       -0.30,
			DueToday:      0.20,
		},
		Overdue:        OverdueClampToZero,
		Duration:       DurationTargetDistance,
		PhysiologyTilt: true,
		HorizonDays:    DefaultHorizonDays,
	}
}

// RuleConfig is the simplified rule score: urgency*0.6 + difficulty*0.25 +
// quick-wins*0.15 + special-date boost. The pre-filter always uses it.
func RuleConfig() Config {
	return Config{
		Weights: Weights{
			Urgency:       0.60,
			DifficultyFit: 0.25,
			QuickWins:     0.15,
			Overdue:       0.30,
			DueToday:      0.20,
		},
		Overdue:            OverdueClampToOne,
		Duration:           DurationBucketed,
		HorizonDays:        DefaultHorizonDays,
		ExclusiveDateBoost: true,
	}
}

// ConfigForMode resolves a preset by name; empty means algorithm.
func ConfigForMode(mode string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAlgorithm:
		return AlgorithmConfig(), nil
	case ModeRule:
		return RuleConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown scoring mode %q", mode)
	}
}
