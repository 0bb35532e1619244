package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"FlowAdvisor/internal/app"
	"FlowAdvisor/internal/config"
	"FlowAdvisor/internal/logging"
)

var (
	cfg        config.Config
	logger     *slog.Logger
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "flowadvisor",
	Short: "Pick the one task to start right now",
	Long: `flowadvisor recommends the single best pending task for how you feel.

It scores tasks locally by deadline, effort, difficulty and mood, and can ask
a chat-completions model to rerank a shortlist, falling back to the local
pick whenever the model is unavailable or answers with something unusable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("FLOWADVISOR_CONFIG")
		}
		cfg = config.LoadFile(path)
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $FLOWADVISOR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openApp builds the application for one command invocation.
func openApp(ctx context.Context) (*app.Application, error) {
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return application, nil
}
