package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowAdvisor/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTaskCommandsAndLocalRecommendation(t *testing.T) {
	t.Setenv("FLOWADVISOR_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FLOWADVISOR_DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "tasks.db"))

	out, err := run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found")

	out, err = run(t, "tasks", "add", "Reply", "to", "email", "--hours", "0.25", "--difficulty", "easy")
	require.NoError(t, err)
	assert.Contains(t, out, "Added")
	emailRef := strings.Fields(out)[1]

	_, err = run(t, "tasks", "add", "Write essay", "--deadline", time.Now().Add(72*time.Hour).Format("2006-01-02"), "--hours", "3", "--difficulty", "hard")
	require.NoError(t, err)

	out, err = run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Reply to email")
	assert.Contains(t, out, "Write essay")
	assert.Contains(t, out, "Total: 2 tasks")

	out, err = run(t, "recommend", "--emotion", "anxious", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "Reply to email")
	assert.Contains(t, out, "Local rule.")

	out, err = run(t, "tasks", "done", emailRef)
	require.NoError(t, err)
	assert.Contains(t, out, "Done: Reply to email")

	out, err = run(t, "recommend", "--emotion", "anxious", "--local=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Write essay")
	assert.Contains(t, out, "missing API key")

	out, err = run(t, "tasks", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "done")

	_, err = run(t, "tasks", "remove", "ffffffff-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestResolveTask(t *testing.T) {
	t.Parallel()

	a := domain.Task{ID: uuid.MustParse("aaaa1111-0000-0000-0000-000000000000"), Name: "a"}
	b := domain.Task{ID: uuid.MustParse("aaaa2222-0000-0000-0000-000000000000"), Name: "b"}
	tasks := []domain.Task{a, b}

	got, err := resolveTask(tasks, "AAAA1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = resolveTask(tasks, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = resolveTask(tasks, "aaaa")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveTask(tasks, "ffff")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("test", 2*3600)

	got, err := parseDeadline("2025-03-10T09:30:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)))

	got, err = parseDeadline("2025-03-10 18:00", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 18, 0, 0, 0, loc)))

	got, err = parseDeadline("2025-03-10", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 23, 59, 0, 0, loc)))

	_, err = parseDeadline("next tuesday", loc)
	assert.Error(t, err)
}

func TestRenderRecommendation(t *testing.T) {
	t.Parallel()

	hours := 1.5
	task := domain.Task{ID: uuid.New(), Name: "Plan <b>sprint</b>", EstimatedHours: &hours, Difficulty: "hard"}
	out := renderRecommendation(domain.Recommendation{
		Task:   &task,
		Reason: "AI: good energy for deep work",
		Note:   "",
		Source: domain.SourceHybrid,
	})
	assert.Contains(t, out, "Plan sprint")
	assert.Contains(t, out, "AI: good energy for deep work")
	assert.Contains(t, out, "1.5h")
	assert.Contains(t, out, "source: hybrid")
	assert.NotContains(t, out, "Note:")

	empty := renderRecommendation(domain.Recommendation{Source: domain.SourceNone, Reason: "Nothing on your plate. Take a break!"})
	assert.Contains(t, empty, "Take a break")
}
