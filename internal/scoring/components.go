package scoring

import (
	"math"
	"time"

	"FlowAdvisor/internal/domain"
)

// Neutral component values for tasks missing a deadline or an estimate.
const (
	MissingUrgency     = 0.2
	MissingQuickWins   = 0.3
	MissingDurationFit = 0.3
)

const (
	secondsPerDay  = 86400.0
	urgencyEasing  = 0.7
	minTargetHours = 0.25
	maxShiftHours  = 0.75
	maxTilt        = 0.25
)

// Urgency maps the distance to a deadline onto [0, 1] over the horizon.
// Overdue tasks (days <= 0) score according to policy.
func Urgency(deadline, now time.Time, horizonDays float64, policy OverduePolicy) float64 {
	days := deadline.Sub(now).Seconds() / secondsPerDay
	if days <= 0 {
		if policy == OverdueClampToOne {
			return 1.0
		}
		return 0
	}

	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	clamped := clamp(1-days/horizonDays, 0, 1)
	return math.Pow(clamped, urgencyEasing)
}

// QuickWins is the three-step effort bonus.
func QuickWins(hours float64) float64 {
	switch {
	case hours <= 0.5:
		return 1.0
	case hours <= 1.0:
		return 0.6
	default:
		return 0.2
	}
}

// PhysiologyShift moves the preferred duration: high heart rate or low
// HRV shortens it, calm readings lengthen it.
func PhysiologyShift(heartRate, hrv *float64) float64 {
	var shift float64
	if heartRate != nil {
		switch hr := *heartRate; {
		case hr >= 90:
			shift -= 0.5
		case hr >= 80:
			shift -= 0.25
		case hr <= 60:
			shift += 0.15
		}
	}
	if hrv != nil {
		switch v := *hrv; {
		case v < 25:
			shift -= 0.35
		case v > 60:
			shift += 0.20
		}
	}
	return clamp(shift, -maxShiftHours, maxShiftHours)
}

// TargetDuration is the preferred task length in hours for the state.
func TargetDuration(state domain.UserState) float64 {
	base := domain.ClassifyEmotion(state.Emotion).PreferredHours()
	return math.Max(minTargetHours, base+PhysiologyShift(state.HeartRateBPM, state.HRVSDNNms))
}

// DurationFit decays smoothly as the estimate drifts from the target.
func DurationFit(hours, target float64) float64 {
	diff := hours - target
	return 1.0 / (1.0 + diff*diff)
}

// DifficultyFit scores the task difficulty against the emotion bucket.
func DifficultyFit(difficulty domain.Difficulty, bucket domain.EmotionBucket) float64 {
	pref := bucket.PreferredDifficulty()
	if pref == difficulty {
		return 1.0
	}
	if pref == domain.DifficultyMedium || difficulty == domain.DifficultyMedium {
		return 0.6
	}
	return 0.25
}

// PhysiologyTilt nudges the difficulty fit towards easier work under strain.
func PhysiologyTilt(heartRate, hrv *float64) float64 {
	var tilt float64
	if heartRate != nil {
		switch hr := *heartRate; {
		case hr >= 90:
			tilt -= 0.20
		case hr >= 80:
			tilt -= 0.10
		case hr <= 60:
			tilt += 0.05
		}
	}
	if hrv != nil {
		switch v := *hrv; {
		case v < 25:
			tilt -= 0.15
		case v > 60:
			tilt += 0.10
		}
	}
	return clamp(tilt, -maxTilt, maxTilt)
}

// DateFlags reports whether the deadline is on now's calendar day and
// whether it has already passed.
func DateFlags(deadline, now time.Time) (dueToday, overdue bool) {
	dy, dm, dd := deadline.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	dueToday = dy == ny && dm == nm && dd == nd
	overdue = deadline.Before(now)
	return dueToday, overdue
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
