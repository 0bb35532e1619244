package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FlowAdvisor/internal/domain"
)

// TaskRepository loads and stores the ordered task list.
type TaskRepository interface {
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	SaveTasks(ctx context.Context, tasks []domain.Task) error
	AddTask(ctx context.Context, task domain.Task) error
	SetDone(ctx context.Context, id uuid.UUID, done bool) error
	RemoveTask(ctx context.Context, id uuid.UUID) error
}

// Completer is the external text-completion capability (e.g., ChatGPT).
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

// VitalsProvider exposes the latest physiological readings, when any.
type VitalsProvider interface {
	LatestHeartRate(ctx context.Context) (float64, bool)
	LatestHRV(ctx context.Context) (float64, bool)
}

// Notifier publishes recommendations to Telegram or other channels.
type Notifier interface {
	PublishRecommendation(ctx context.Context, message string) error
}

// Scheduler controls when the watcher re-evaluates.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
