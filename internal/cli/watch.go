package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchEmotion  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute periodically and notify when the pick changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval > 0 {
			cfg.Watch.Interval = watchInterval
		}
		if watchEmotion != "" {
			cfg.Watch.Emotion = watchEmotion
		}

		application, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Watch(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "polling interval (default from config)")
	watchCmd.Flags().StringVarP(&watchEmotion, "emotion", "e", "", "emotion used for each recompute")
}
