package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"FlowAdvisor/internal/config"
	"FlowAdvisor/internal/explain"
	"FlowAdvisor/internal/infrastructure/httpapi"
	"FlowAdvisor/internal/infrastructure/llm"
	"FlowAdvisor/internal/infrastructure/scheduler"
	"FlowAdvisor/internal/infrastructure/storage"
	"FlowAdvisor/internal/infrastructure/telegram"
	"FlowAdvisor/internal/infrastructure/vitals"
	"FlowAdvisor/internal/logging"
	"FlowAdvisor/internal/ports"
	"FlowAdvisor/internal/ranking"
	"FlowAdvisor/internal/recency"
	"FlowAdvisor/internal/rerank"
	"FlowAdvisor/internal/scoring"
	"FlowAdvisor/internal/usecase"
)

// Reasons attached to local results when the hybrid path is off.
const (
	disabledMissingKey = "missing API key"
	disabledByConfig   = "remote ranking disabled"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	repo        *storage.SQLRepository
	recommender *usecase.Recommender
	notifier    ports.Notifier
}

// New opens the task store and builds the recommendation stack.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	repo, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	scoringCfg, err := cfg.Ranking.ScoringConfig()
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	memory := recency.New(recency.DefaultCapacity)
	local := ranking.NewLocal(scoring.NewScorer(scoringCfg, memory), memory)

	deps := usecase.RecommenderDeps{
		Tasks:         repo,
		Vitals:        vitals.NewStaticProvider(cfg.Vitals.HeartRateBPM, cfg.Vitals.HRVSDNNms),
		PreFilter:     ranking.NewPreFilter(nil),
		Local:         local,
		Logger:        baseLogger.With("component", "recommender"),
		TopK:          cfg.Ranking.TopK,
		RemoteEnabled: cfg.Ranking.RemoteEnabled(),
		Explain:       cfg.Explainer.Enabled,
	}

	switch {
	case !cfg.Ranking.RemoteEnabled():
		deps.DisabledReason = disabledByConfig
	case cfg.ChatGPT.APIKey == "":
		deps.DisabledReason = disabledMissingKey
	}

	if cfg.ChatGPT.APIKey != "" {
		completer := llm.NewChatGPTClient(cfg.ChatGPT)
		deps.Reranker = rerank.NewClient(completer, rerank.Options{
			Model:       cfg.ChatGPT.Model,
			Timeout:     cfg.ChatGPT.Timeout,
			Temperature: cfg.ChatGPT.Temperature,
			Seed:        cfg.ChatGPT.Seed,
		})
		deps.Explainer = explain.New(completer, explain.Options{
			Model:       cfg.Explainer.Model,
			Temperature: cfg.Explainer.Temperature,
			MaxTokens:   cfg.Explainer.MaxTokens,
		})
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		repo:        repo,
		recommender: usecase.NewRecommender(deps),
		notifier:    notifier,
	}, nil
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config { return a.cfg }

// Tasks exposes the task store.
func (a *Application) Tasks() ports.TaskRepository { return a.repo }

// Recommender exposes the orchestrator.
func (a *Application) Recommender() *usecase.Recommender { return a.recommender }

// Close releases the task store.
func (a *Application) Close() error {
	return a.repo.Close()
}

// Watch recomputes on the configured interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if a.notifier == nil {
		a.logger.Warn("telegram not configured, changes are only logged")
	}

	watcher := usecase.NewWatcher(usecase.WatcherDeps{
		Driver:      scheduler.NewIntervalScheduler(a.cfg.Watch.Interval),
		Recommender: a.recommender,
		Notifier:    a.notifier,
		Emotion:     a.cfg.Watch.Emotion,
		Logger:      a.logger.With("component", "watcher"),
	})
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	a.logger.Info("watching tasks", "interval", a.cfg.Watch.Interval, "emotion", a.cfg.Watch.Emotion)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return watcher.Stop(stopCtx)
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	api := httpapi.NewServer(httpapi.Deps{
		Tasks:          a.repo,
		Recommender:    a.recommender,
		JWTSecret:      a.cfg.Server.JWTSecret,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Logger:         a.logger.With("component", "httpapi"),
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http api listening", "addr", a.cfg.Server.Addr, "auth", a.cfg.Server.JWTSecret != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
