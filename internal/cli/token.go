package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"FlowAdvisor/internal/infrastructure/httpapi"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Server.JWTSecret == "" {
			return fmt.Errorf("server.jwtSecret is not set")
		}
		token, err := httpapi.GenerateToken([]byte(cfg.Server.JWTSecret), tokenSubject, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "me", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "token lifetime")
}
