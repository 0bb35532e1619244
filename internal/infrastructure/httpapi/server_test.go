package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ranking"
	"FlowAdvisor/internal/recency"
	"FlowAdvisor/internal/scoring"
	"FlowAdvisor/internal/usecase"
)

type memRepo struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func (m *memRepo) LoadTasks(context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Task(nil), m.tasks...), nil
}

func (m *memRepo) SaveTasks(_ context.Context, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]domain.Task(nil), tasks...)
	return nil
}

func (m *memRepo) AddTask(_ context.Context, task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *memRepo) SetDone(_ context.Context, id uuid.UUID, done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Done = done
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (m *memRepo) RemoveTask(context.Context, uuid.UUID) error { return nil }

func newTestServer(t *testing.T, secret string) (*httptest.Server, *memRepo) {
	t.Helper()

	repo := &memRepo{}
	mem := recency.New(0)
	rec := usecase.NewRecommender(usecase.RecommenderDeps{
		Tasks:          repo,
		Local:          ranking.NewLocal(scoring.NewScorer(scoring.AlgorithmConfig(), mem), mem),
		DisabledReason: "missing API key",
	})
	srv := httptest.NewServer(NewServer(Deps{Tasks: repo, Recommender: rec, JWTSecret: secret}).Handler())
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestTaskLifecycleAndRecommendation(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t, "")

	resp := do(t, http.MethodPost, srv.URL+"/recommendations", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty recommendationDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	assert.Equal(t, "none", empty.Source)
	assert.Nil(t, empty.Task)

	resp = do(t, http.MethodPost, srv.URL+"/tasks", "", `{"name":"  Reply to email ","estimatedHours":0.25,"difficulty":"easy"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created taskDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Reply to email", created.Name)

	deadline := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	resp = do(t, http.MethodPost, srv.URL+"/tasks", "", `{"name":"Write essay","deadline":"`+deadline+`","estimatedHours":3,"difficulty":"hard"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/tasks", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []taskDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 2)
	require.NotNil(t, listed[1].Deadline)

	resp = do(t, http.MethodPost, srv.URL+"/recommendations", "", `{"emotion":"anxious"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec recommendationDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "local", rec.Source)
	assert.Equal(t, usecase.ReasonLocal, rec.Reason)
	assert.Equal(t, "missing API key", rec.Note)
	require.NotNil(t, rec.Task)
	assert.Equal(t, created.ID, rec.Task.ID)
	assert.Len(t, rec.Ranking, 2)

	resp = do(t, http.MethodPost, srv.URL+"/tasks/"+created.ID+"/done", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	tasks, _ := repo.LoadTasks(context.Background())
	assert.True(t, tasks[0].Done)
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/tasks", "", `{"name":"  "}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/tasks", "", `{"name":"x","estimatedHours":-1}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/tasks", "", `{`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/tasks/nope/done", "", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodPost, srv.URL+"/tasks/"+uuid.NewString()+"/done", "", "").StatusCode)
}

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	secret := "s3cret"
	srv, _ := newTestServer(t, secret)

	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/health", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/tasks", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/tasks", "garbage", "").StatusCode)

	wrong, err := GenerateToken([]byte("other"), "me", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/tasks", wrong, "").StatusCode)

	expired, err := GenerateToken([]byte(secret), "me", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/tasks", expired, "").StatusCode)

	token, err := GenerateToken([]byte(secret), "me", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/tasks", token, "").StatusCode)

	sub, err := ParseToken([]byte(secret), token)
	require.NoError(t, err)
	assert.Equal(t, "me", sub)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORSCredentialsOnlyForExplicitOrigins(t *testing.T) {
	t.Parallel()

	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	wildcard := NewServer(Deps{Tasks: &memRepo{}}).Handler()
	rr := preflight(wildcard, "http://evil.example")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEqual(t, "http://evil.example", rr.Header().Get("Access-Control-Allow-Origin"))

	explicit := NewServer(Deps{Tasks: &memRepo{}, AllowedOrigins: []string{"http://app.example"}}).Handler()
	rr = preflight(explicit, "http://app.example")
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "http://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecommendAcceptsEmptyChunkedBody(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	mem := recency.New(0)
	rec := usecase.NewRecommender(usecase.RecommenderDeps{
		Tasks: repo,
		Local: ranking.NewLocal(scoring.NewScorer(scoring.AlgorithmConfig(), mem), mem),
	})
	h := NewServer(Deps{Tasks: repo, Recommender: rec}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(""))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var out recommendationDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	assert.Equal(t, "none", out.Source)
}
