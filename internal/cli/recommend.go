package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/usecase"
)

var (
	recEmotion string
	recHR      float64
	recHRV     float64
	recLocal   bool
	recTopK    int
	recExplain bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the next task",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		state := domain.UserState{Emotion: recEmotion}
		if cmd.Flags().Changed("hr") {
			hr := recHR
			state.HeartRateBPM = &hr
		}
		if cmd.Flags().Changed("hrv") {
			hrv := recHRV
			state.HRVSDNNms = &hrv
		}

		explain := application.Config().Explainer.Enabled
		if cmd.Flags().Changed("explain") {
			explain = recExplain
		}

		rec, err := application.Recommender().RecommendPending(ctx, state, usecase.Options{
			LocalOnly: recLocal,
			Explain:   explain,
			TopK:      recTopK,
		})
		if err != nil {
			return fmt.Errorf("failed to recommend: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderRecommendation(rec))
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVarP(&recEmotion, "emotion", "e", "neutral", "how you feel right now")
	recommendCmd.Flags().Float64Var(&recHR, "hr", 0, "heart rate in bpm")
	recommendCmd.Flags().Float64Var(&recHRV, "hrv", 0, "heart rate variability (SDNN) in ms")
	recommendCmd.Flags().BoolVar(&recLocal, "local", false, "skip the remote reranker")
	recommendCmd.Flags().IntVar(&recTopK, "top-k", 0, "shortlist size sent to the reranker")
	recommendCmd.Flags().BoolVar(&recExplain, "explain", false, "ask for a short coaching explanation")
}
