package domain

import (
	"strings"
	"time"
)

// UserState is the snapshot of how the user feels when asking for a task.
type UserState struct {
	Emotion      string
	HeartRateBPM *float64
	HRVSDNNms    *float64
	Now          time.Time
}

// EmotionBucket is the coarse classification of a free-text emotion.
type EmotionBucket int

const (
	BucketNeutral EmotionBucket = iota
	BucketStressed
	BucketEnergized
)

func (b EmotionBucket) String() string {
	switch b {
	case BucketStressed:
		return "stressed"
	case BucketEnergized:
		return "energized"
	default:
		return "neutral"
	}
}

var (
	stressedKeywords  = []string{"anxious", "uneasy", "tired", "distracted", "stressed", "overwhelmed"}
	energizedKeywords = []string{"alert", "focused", "motivated", "energetic", "energized", "happy"}
)

// ClassifyEmotion buckets an emotion label by keyword containment.
// Stressed keywords are checked first.
func ClassifyEmotion(emotion string) EmotionBucket {
	lower := strings.ToLower(emotion)
	if containsAny(lower, stressedKeywords...) {
		return BucketStressed
	}
	if containsAny(lower, energizedKeywords...) {
		return BucketEnergized
	}
	return BucketNeutral
}

// PreferredDifficulty is the difficulty that best fits a bucket.
func (b EmotionBucket) PreferredDifficulty() Difficulty {
	switch b {
	case BucketStressed:
		return DifficultyEasy
	case BucketEnergized:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// PreferredHours is the task length, in hours, that best fits a bucket.
func (b EmotionBucket) PreferredHours() float64 {
	switch b {
	case BucketStressed:
		return 0.5
	case BucketEnergized:
		return 2.0
	default:
		return 1.5
	}
}
