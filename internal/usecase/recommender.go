package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
	"FlowAdvisor/internal/ranking"
)

// Reason strings surfaced with a recommendation.
const (
	ReasonNothingToDo   = "Nothing on your plate. Take a break!"
	ReasonLocal         = "Local rule."
	ReasonUnknownID     = "AI fallback: ID not found. Used local rule."
	ReasonRemoteFailure = "Local rule (AI error)."
	aiReasonPrefix      = "AI: "
)

// Reranker ranks a shortlist remotely and resolves the chosen task.
type Reranker interface {
	Rerank(ctx context.Context, shortlist []domain.Task, state domain.UserState) (domain.RankingResult, domain.Task, error)
}

// Explainer produces a short coaching message for a chosen task.
type Explainer interface {
	Explain(ctx context.Context, task domain.Task, state domain.UserState) (string, error)
}

// RecommenderDeps wires rankers and driven adapters into the orchestrator.
type RecommenderDeps struct {
	Tasks     ports.TaskRepository
	Vitals    ports.VitalsProvider
	Reranker  Reranker
	PreFilter *ranking.PreFilter
	Local     *ranking.Local
	Explainer Explainer
	Logger    *slog.Logger

	TopK           int
	RemoteEnabled  bool
	DisabledReason string
	Explain        bool
	Now            func() time.Time
}

// Options adjust a single recommendation call.
type Options struct {
	LocalOnly bool
	Explain   bool
	TopK      int
	// NoRecord keeps local picks out of recency memory.
	NoRecord bool
}

// Recommender runs the hybrid path and falls back to the local ranker.
type Recommender struct {
	tasks          ports.TaskRepository
	vitals         ports.VitalsProvider
	reranker       Reranker
	prefilter      *ranking.PreFilter
	local          *ranking.Local
	explainer      Explainer
	logger         *slog.Logger
	topK           int
	remoteEnabled  bool
	disabledReason string
	explain        bool
	now            func() time.Time
}

// NewRecommender constructs the orchestration component.
func NewRecommender(deps RecommenderDeps) *Recommender {
	r := &Recommender{
		tasks:          deps.Tasks,
		vitals:         deps.Vitals,
		reranker:       deps.Reranker,
		prefilter:      deps.PreFilter,
		local:          deps.Local,
		explainer:      deps.Explainer,
		logger:         deps.Logger,
		topK:           deps.TopK,
		remoteEnabled:  deps.RemoteEnabled,
		disabledReason: deps.DisabledReason,
		explain:        deps.Explain,
		now:            deps.Now,
	}
	if r.prefilter == nil {
		r.prefilter = ranking.NewPreFilter(nil)
	}
	if r.topK <= 0 {
		r.topK = ranking.DefaultTopK
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// RecommendPending loads the stored list and recommends among pending tasks.
func (r *Recommender) RecommendPending(ctx context.Context, state domain.UserState, opts Options) (domain.Recommendation, error) {
	if r.tasks == nil {
		return domain.Recommendation{}, fmt.Errorf("task repository not configured")
	}
	tasks, err := r.tasks.LoadTasks(ctx)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("load tasks: %w", err)
	}
	return r.RecommendWith(ctx, tasks, state, opts)
}

// Recommend picks one task with the configured defaults.
func (r *Recommender) Recommend(ctx context.Context, tasks []domain.Task, state domain.UserState) (domain.Recommendation, error) {
	return r.RecommendWith(ctx, tasks, state, Options{Explain: r.explain})
}

// RecommendWith picks one task. Hybrid failures never reach the caller;
// an empty candidate set yields a SourceNone recommendation.
func (r *Recommender) RecommendWith(ctx context.Context, tasks []domain.Task, state domain.UserState, opts Options) (domain.Recommendation, error) {
	pending := domain.Pending(tasks)
	if len(pending) == 0 {
		return domain.Recommendation{Source: domain.SourceNone, Reason: ReasonNothingToDo}, nil
	}
	if r.local == nil {
		return domain.Recommendation{}, fmt.Errorf("local ranker not configured")
	}

	state = r.completeState(ctx, state)

	var (
		rec domain.Recommendation
		err error
	)
	switch {
	case opts.LocalOnly:
		rec, err = r.fallback(pending, state, opts, ReasonLocal, "")
	case !r.remoteEnabled || r.reranker == nil:
		rec, err = r.fallback(pending, state, opts, ReasonLocal, r.disabledReason)
	default:
		var failure string
		rec, failure = r.hybrid(ctx, pending, state, opts)
		if failure != "" {
			rec, err = r.fallback(pending, state, opts, failure, "")
		}
	}
	if err != nil {
		return domain.Recommendation{}, err
	}

	if opts.Explain && r.explainer != nil && rec.Task != nil {
		text, err := r.explainer.Explain(ctx, *rec.Task, state)
		if err != nil {
			r.warn("explanation unavailable", "error", err)
		} else {
			rec.Explanation = text
		}
	}

	return rec, nil
}

// hybrid returns a non-empty failure reason when the remote path is abandoned.
func (r *Recommender) hybrid(ctx context.Context, pending []domain.Task, state domain.UserState, opts Options) (domain.Recommendation, string) {
	topK := opts.TopK
	if topK <= 0 {
		topK = r.topK
	}
	shortlist := r.prefilter.Shortlist(pending, state, topK)
	r.debug("shortlisted for rerank", "candidates", len(pending), "shortlist", len(shortlist))

	result, chosen, err := r.reranker.Rerank(ctx, shortlist, state)
	if err != nil {
		stage := "rerank"
		reason := ReasonRemoteFailure
		switch {
		case errors.Is(err, domain.ErrUnknownChosenID):
			stage, reason = "resolve", ReasonUnknownID
		case errors.Is(err, domain.ErrNoValidJSON), errors.Is(err, domain.ErrMalformedChosen):
			stage = "parse"
		}
		r.warn("hybrid ranking failed, using local rule", "stage", stage, "error", err)
		return domain.Recommendation{}, reason
	}

	r.debug("hybrid pick", "task", chosen.ID, "ranked", len(result.Ranking))
	return domain.Recommendation{
		Task:    &chosen,
		Reason:  aiReasonPrefix + result.Chosen.Reason,
		Source:  domain.SourceHybrid,
		Ranking: result.Ranking,
	}, ""
}

// fallback runs the local ranker over the full pending set.
func (r *Recommender) fallback(pending []domain.Task, state domain.UserState, opts Options, reason, note string) (domain.Recommendation, error) {
	var (
		ranked []ranking.Scored
		err    error
	)
	if opts.NoRecord {
		ranked, err = r.local.RankNonEmpty(pending, state)
	} else {
		ranked, err = r.local.PickRanked(pending, state)
	}
	if err != nil {
		return domain.Recommendation{}, err
	}
	best := ranked[0].Task
	r.debug("local pick", "task", best.ID, "score", ranked[0].Breakdown.Total)

	return domain.Recommendation{
		Task:    &best,
		Reason:  reason,
		Note:    note,
		Source:  domain.SourceLocal,
		Ranking: ranking.Entries(ranked),
	}, nil
}

func (r *Recommender) completeState(ctx context.Context, state domain.UserState) domain.UserState {
	if state.Now.IsZero() {
		state.Now = r.now()
	}
	if r.vitals == nil {
		return state
	}
	if state.HeartRateBPM == nil {
		if hr, ok := r.vitals.LatestHeartRate(ctx); ok {
			state.HeartRateBPM = &hr
		}
	}
	if state.HRVSDNNms == nil {
		if hrv, ok := r.vitals.LatestHRV(ctx); ok {
			state.HRVSDNNms = &hrv
		}
	}
	return state
}

func (r *Recommender) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Recommender) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
