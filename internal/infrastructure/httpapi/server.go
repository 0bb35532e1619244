// Package httpapi exposes tasks and recommendations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
	"FlowAdvisor/internal/usecase"
)

// Recommender is the part of the orchestrator the API needs.
type Recommender interface {
	RecommendPending(ctx context.Context, state domain.UserState, opts usecase.Options) (domain.Recommendation, error)
}

// Deps wires the API to the task store and the orchestrator.
type Deps struct {
	Tasks          ports.TaskRepository
	Recommender    Recommender
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server routes HTTP requests to the use cases.
type Server struct {
	tasks       ports.TaskRepository
	recommender Recommender
	secret      []byte
	origins     []string
	logger      *slog.Logger
}

// NewServer builds the API; an empty JWTSecret disables auth.
func NewServer(deps Deps) *Server {
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		tasks:       deps.Tasks,
		recommender: deps.Recommender,
		secret:      []byte(deps.JWTSecret),
		origins:     origins,
		logger:      deps.Logger,
	}
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("GET /tasks", s.listTasks)
	protected.HandleFunc("POST /tasks", s.createTask)
	protected.HandleFunc("POST /tasks/{id}/done", s.completeTask)
	protected.HandleFunc("POST /recommendations", s.recommend)

	var api http.Handler = protected
	if len(s.secret) > 0 {
		api = requireToken(s.secret, protected)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/", api)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: explicitOrigins(s.origins),
	})
	return c.Handler(mux)
}

// explicitOrigins reports whether origins name concrete hosts only.
func explicitOrigins(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return false
		}
	}
	return true
}

type taskDTO struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Deadline       *time.Time `json:"deadline"`
	EstimatedHours *float64   `json:"estimatedHours"`
	Difficulty     string     `json:"difficulty,omitempty"`
	Done           bool       `json:"done"`
}

func toTaskDTO(t domain.Task) taskDTO {
	return taskDTO{
		ID:             t.ID.String(),
		Name:           t.Name,
		Deadline:       t.Deadline,
		EstimatedHours: t.EstimatedHours,
		Difficulty:     t.Difficulty,
		Done:           t.Done,
	}
}

type createTaskRequest struct {
	Name           string     `json:"name"`
	Deadline       *time.Time `json:"deadline"`
	EstimatedHours *float64   `json:"estimatedHours"`
	Difficulty     string     `json:"difficulty"`
}

type recommendRequest struct {
	Emotion      string   `json:"emotion"`
	HeartRateBPM *float64 `json:"heartRateBPM"`
	HRVSDNNms    *float64 `json:"hrvSDNNms"`
	Local        bool     `json:"local"`
	Explain      bool     `json:"explain"`
	TopK         int      `json:"topK"`
}

type rankedDTO struct {
	ID     string   `json:"id"`
	Score  *float64 `json:"score"`
	Reason string   `json:"reason,omitempty"`
}

type recommendationDTO struct {
	Task        *taskDTO    `json:"task"`
	Reason      string      `json:"reason"`
	Note        string      `json:"note,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
	Source      string      `json:"source"`
	Ranking     []rankedDTO `json:"ranking"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.LoadTasks(r.Context())
	if err != nil {
		s.internalError(w, "load tasks", err)
		return
	}

	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.EstimatedHours != nil && *req.EstimatedHours < 0 {
		writeError(w, http.StatusBadRequest, "estimatedHours must not be negative")
		return
	}

	task := domain.NewTask(name, req.Deadline, req.EstimatedHours, strings.TrimSpace(req.Difficulty))
	if err := s.tasks.AddTask(r.Context(), task); err != nil {
		s.internalError(w, "add task", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.tasks.SetDone(r.Context(), id, true); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		s.internalError(w, "set done", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rec, err := s.recommender.RecommendPending(r.Context(), domain.UserState{
		Emotion:      req.Emotion,
		HeartRateBPM: req.HeartRateBPM,
		HRVSDNNms:    req.HRVSDNNms,
	}, usecase.Options{LocalOnly: req.Local, Explain: req.Explain, TopK: req.TopK})
	if err != nil {
		s.internalError(w, "recommend", err)
		return
	}

	out := recommendationDTO{
		Reason:      rec.Reason,
		Note:        rec.Note,
		Explanation: rec.Explanation,
		Source:      string(rec.Source),
		Ranking:     make([]rankedDTO, 0, len(rec.Ranking)),
	}
	if rec.Task != nil {
		dto := toTaskDTO(*rec.Task)
		out.Task = &dto
	}
	for _, e := range rec.Ranking {
		out.Ranking = append(out.Ranking, rankedDTO{ID: e.TaskID.String(), Score: e.Score, Reason: e.Reason})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	if s.logger != nil {
		s.logger.Error("request failed", "op", op, "error", err)
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
