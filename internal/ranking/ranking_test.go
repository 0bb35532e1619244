package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/recency"
	"FlowAdvisor/internal/scoring"
)

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func hours(v float64) *float64 { return &v }

func due(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func newTask(name string, deadline *time.Time, effort *float64, difficulty string) domain.Task {
	return domain.Task{ID: uuid.New(), Name: name, Deadline: deadline, EstimatedHours: effort, Difficulty: difficulty}
}

func newLocal(mem *recency.Memory) *Local {
	return NewLocal(scoring.NewScorer(scoring.AlgorithmConfig(), mem), mem)
}

func TestLocalPickReturnsMember(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		newTask("essay", due(72*time.Hour), hours(3), "hard"),
		newTask("email", due(20*time.Hour), hours(0.25), "easy"),
		newTask("groceries", nil, nil, ""),
	}
	state := domain.UserState{Emotion: "Anxious", Now: testNow}

	mem := recency.New(0)
	got, err := newLocal(mem).Pick(tasks, state)
	require.NoError(t, err)

	_, ok := domain.FindTask(tasks, got.Task.ID)
	assert.True(t, ok)
	assert.Equal(t, "email", got.Task.Name)
	assert.Equal(t, []uuid.UUID{got.Task.ID}, mem.Recent())
}

func TestLocalPickEmpty(t *testing.T) {
	t.Parallel()

	mem := recency.New(0)
	_, err := newLocal(mem).Pick(nil, domain.UserState{Now: testNow})
	require.ErrorIs(t, err, domain.ErrEmptyCandidateSet)
	assert.Equal(t, 0, mem.Len())
}

func TestLocalTieBreakEarliestDeadline(t *testing.T) {
	t.Parallel()

	later := newTask("later", due(30*24*time.Hour), hours(1), "medium")
	sooner := newTask("sooner", due(20*24*time.Hour), hours(1), "medium")
	undated := newTask("undated", nil, hours(1), "medium")
	state := domain.UserState{Emotion: "calm", Now: testNow}

	l := NewLocal(scoring.NewScorer(scoring.AlgorithmConfig(), nil), nil)
	ranked := l.Rank([]domain.Task{later, sooner}, state)
	require.Len(t, ranked, 2)
	require.Equal(t, ranked[0].Breakdown.Total, ranked[1].Breakdown.Total)
	assert.Equal(t, "sooner", ranked[0].Task.Name)
	assert.Equal(t, 1, ranked[0].Index)

	undatedLast := NewLocal(scoring.NewScorer(scoring.Config{Weights: scoring.Weights{QuickWins: 1}}, nil), nil).
		Rank([]domain.Task{undated, later}, state)
	assert.Equal(t, "later", undatedLast[0].Task.Name)
}

func TestLocalTieBreakFirstSeen(t *testing.T) {
	t.Parallel()

	a := newTask("a", nil, hours(1), "easy")
	b := newTask("b", nil, hours(1), "easy")

	got, err := NewLocal(scoring.NewScorer(scoring.AlgorithmConfig(), nil), nil).
		Pick([]domain.Task{a, b}, domain.UserState{Emotion: "tired", Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.Task.ID)
}

func TestLocalRepetitionRotatesTies(t *testing.T) {
	t.Parallel()

	a := newTask("a", nil, hours(1), "easy")
	b := newTask("b", nil, hours(1), "easy")
	tasks := []domain.Task{a, b}
	state := domain.UserState{Emotion: "tired", Now: testNow}

	mem := recency.New(0)
	l := newLocal(mem)

	var picked []string
	for i := 0; i < 3; i++ {
		got, err := l.Pick(tasks, state)
		require.NoError(t, err)
		picked = append(picked, got.Task.Name)
	}
	assert.Equal(t, []string{"a", "b", "a"}, picked)
}

func TestEntriesCarryScores(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{newTask("x", due(time.Hour), hours(1), "easy"), newTask("y", nil, nil, "")}
	ranked := NewLocal(scoring.NewScorer(scoring.RuleConfig(), nil), nil).Rank(tasks, domain.UserState{Now: testNow})

	entries := Entries(ranked)
	require.Len(t, entries, 2)
	for i, e := range entries {
		assert.Equal(t, ranked[i].Task.ID, e.TaskID)
		require.NotNil(t, e.Score)
		assert.Equal(t, ranked[i].Breakdown.Total, *e.Score)
	}
}

func TestShortlistTopK(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		newTask("far", due(13*24*time.Hour), hours(4), "hard"),
		newTask("today", due(2*time.Hour), hours(0.5), "easy"),
		newTask("week", due(7*24*time.Hour), hours(1), "medium"),
		newTask("overdue", due(-48*time.Hour), hours(2), "hard"),
		newTask("blank", nil, nil, ""),
		newTask("tomorrow", due(26*time.Hour), hours(0.5), "easy"),
		newTask("month", due(40*24*time.Hour), hours(6), "hard"),
	}
	state := domain.UserState{Emotion: "stressed", Now: testNow}
	p := NewPreFilter(nil)

	short := p.Shortlist(tasks, state, 3)
	require.Len(t, short, 3)
	assert.Equal(t, []string{"today", "overdue", "tomorrow"}, names(short))

	assert.Len(t, p.Shortlist(tasks, state, 0), 1)
	assert.Len(t, p.Shortlist(tasks, state, -4), 1)
	assert.Len(t, p.Shortlist(tasks, state, 50), len(tasks))
	assert.Empty(t, p.Shortlist(nil, state, 5))
}

func TestShortlistAppliesOneDateBoost(t *testing.T) {
	t.Parallel()

	thisMorning := newTask("missed this morning", due(-2*time.Hour), hours(1), "medium")
	yesterday := newTask("missed yesterday", due(-26*time.Hour), hours(1), "medium")
	state := domain.UserState{Emotion: "calm", Now: testNow}

	bd := scoring.NewScorer(scoring.RuleConfig(), nil).Score(thisMorning, state)
	assert.Equal(t, 0.20, bd.DueToday+bd.Overdue)

	short := NewPreFilter(nil).Shortlist([]domain.Task{thisMorning, yesterday}, state, 1)
	assert.Equal(t, []string{"missed yesterday"}, names(short))
}

func TestShortlistToleratesMissingFields(t *testing.T) {
	t.Parallel()

	blank := newTask("blank", nil, nil, "")
	other := newTask("other", nil, nil, "")

	short := NewPreFilter(nil).Shortlist([]domain.Task{blank, other}, domain.UserState{Now: testNow}, DefaultTopK)
	assert.Equal(t, []string{"blank", "other"}, names(short))
}

func names(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}
