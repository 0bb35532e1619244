package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
	"FlowAdvisor/internal/rerank"
)

// WatcherDeps wires the recurring driver, the recommender and the notifier.
type WatcherDeps struct {
	Driver      ports.Scheduler
	Recommender *Recommender
	Notifier    ports.Notifier
	Emotion     string
	Logger      *slog.Logger
}

// Watcher recomputes the recommendation on every tick and publishes it
// when the chosen task changes.
type Watcher struct {
	driver      ports.Scheduler
	recommender *Recommender
	notifier    ports.Notifier
	emotion     string
	logger      *slog.Logger

	mu   sync.Mutex
	last uuid.UUID
}

// NewWatcher returns a helper to start/stop recurring recommendations.
func NewWatcher(deps WatcherDeps) *Watcher {
	return &Watcher{
		driver:      deps.Driver,
		recommender: deps.Recommender,
		notifier:    deps.Notifier,
		emotion:     deps.Emotion,
		logger:      deps.Logger,
	}
}

// Start registers the watcher job with the provided scheduler.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.recommender == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := w.Tick(ctx, trigger); err != nil && w.logger != nil {
			w.logger.Warn("watch tick failed", "error", err)
		}
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}

// Tick runs one recommendation and reports whether a message was published.
// Ticks do not record picks in recency memory.
func (w *Watcher) Tick(ctx context.Context, at time.Time) (bool, error) {
	rec, err := w.recommender.RecommendPending(ctx, domain.UserState{Emotion: w.emotion, Now: at}, Options{NoRecord: true})
	if err != nil {
		return false, fmt.Errorf("recommend: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.Empty() {
		w.last = uuid.Nil
		return false, nil
	}
	if rec.Task.ID == w.last {
		return false, nil
	}

	if w.logger != nil {
		w.logger.Info("recommendation changed", "task", rec.Task.ID, "source", rec.Source)
	}
	if w.notifier != nil {
		if err := w.notifier.PublishRecommendation(ctx, FormatMessage(rec)); err != nil {
			return false, fmt.Errorf("publish recommendation: %w", err)
		}
	}
	w.last = rec.Task.ID
	return true, nil
}

// FormatMessage renders a recommendation as plain text for chat channels.
func FormatMessage(rec domain.Recommendation) string {
	if rec.Empty() {
		return rec.Reason
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Next up: %s\n", rerank.PlainText(rec.Task.Name))
	fmt.Fprintf(&b, "Why: %s\n", rec.Reason)
	if rec.Task.Deadline != nil {
		fmt.Fprintf(&b, "Deadline: %s\n", rec.Task.Deadline.Format("Mon Jan 2 15:04"))
	}
	if rec.Task.EstimatedHours != nil {
		fmt.Fprintf(&b, "Estimate: %.1fh\n", *rec.Task.EstimatedHours)
	}
	if rec.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", rec.Note)
	}
	if rec.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", rec.Explanation)
	}
	return strings.TrimRight(b.String(), "\n")
}
