// Package recency remembers recently picked tasks so the ranker can
// avoid suggesting the same one over and over.
package recency

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity is how many picks are remembered.
const DefaultCapacity = 10

// penalties by distance from the most recent pick.
var penalties = []float64{-0.10, -0.06, -0.03}

// Memory is a mutex-guarded bounded FIFO of picked task identifiers.
// It lives for the process lifetime and is never persisted.
type Memory struct {
	mu       sync.Mutex
	capacity int
	picked   []uuid.UUID
}

// New creates an empty memory; capacity <= 0 means DefaultCapacity.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity, picked: make([]uuid.UUID, 0, capacity+1)}
}

// MarkPicked appends id and trims the oldest entries beyond capacity.
func (m *Memory) MarkPicked(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.picked = append(m.picked, id)
	if over := len(m.picked) - m.capacity; over > 0 {
		m.picked = append(m.picked[:0], m.picked[over:]...)
	}
}

// RepetitionPenalty looks up the most recent occurrence of id.
// Distance 0 from the end costs -0.10, 1 costs -0.06, 2 costs -0.03.
func (m *Memory) RepetitionPenalty(id uuid.UUID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.picked) - 1; i >= 0; i-- {
		if m.picked[i] != id {
			continue
		}
		distance := len(m.picked) - 1 - i
		if distance < len(penalties) {
			return penalties[distance]
		}
		return 0
	}
	return 0
}

// Recent returns a copy of the remembered picks, oldest first.
func (m *Memory) Recent() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.picked)
}

// Len is the number of remembered picks.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.picked)
}
