package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowAdvisor/internal/scoring"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, apiKeyEnv, modelEnv, databaseDSNEnv, databaseDriverEnv,
		telegramTokenEnv, telegramChatIDEnv, jwtSecretEnv, logLevelEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile("")
	assert.Equal(t, "o4-mini", cfg.ChatGPT.Model)
	assert.Equal(t, 20*time.Second, cfg.ChatGPT.Timeout)
	assert.Equal(t, 0.2, cfg.ChatGPT.Temperature)
	require.NotNil(t, cfg.ChatGPT.Seed)
	assert.Equal(t, 7, *cfg.ChatGPT.Seed)
	assert.Equal(t, 5, cfg.Ranking.TopK)
	assert.Equal(t, scoring.ModeAlgorithm, cfg.Ranking.Mode)
	assert.True(t, cfg.Ranking.RemoteEnabled())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "tasks.db", filepath.Base(cfg.Storage.DSN))
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, "gpt-4o", cfg.Explainer.Model)
	assert.False(t, cfg.Notifications.Telegram.Enabled())
}

func TestLoadFileMergesAndEnvWins(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "flowadvisor.yaml")
	raw := `
logging:
  level: warn
storage:
  driver: postgres
  dsn: postgres://file
chatgpt:
  model: gpt-4o-mini
  timeout: 5s
ranking:
  useRemote: false
  topK: 3
  mode: rule
  weights:
    urgency: 0.9
vitals:
  heartRateBPM: 72
watch:
  interval: 1m
  emotion: stressed
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(apiKeyEnv, "sk-test")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "42")

	cfg := LoadFile(path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://env", cfg.Storage.DSN)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatGPT.Model)
	assert.Equal(t, 5*time.Second, cfg.ChatGPT.Timeout)
	assert.Equal(t, "sk-test", cfg.ChatGPT.APIKey)
	assert.False(t, cfg.Ranking.RemoteEnabled())
	assert.Equal(t, 3, cfg.Ranking.TopK)
	require.NotNil(t, cfg.Vitals.HeartRateBPM)
	assert.Equal(t, 72.0, *cfg.Vitals.HeartRateBPM)
	assert.Nil(t, cfg.Vitals.HRVSDNNms)
	assert.Equal(t, time.Minute, cfg.Watch.Interval)
	assert.Equal(t, "stressed", cfg.Watch.Emotion)
	assert.True(t, cfg.Notifications.Telegram.Enabled())

	sc, err := cfg.Ranking.ScoringConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.9, sc.Weights.Urgency)
	assert.Equal(t, scoring.RuleConfig().Weights.QuickWins, sc.Weights.QuickWins)
	assert.Equal(t, scoring.OverdueClampToOne, sc.Overdue)
}

func TestLoadFileUnreadableFallsBack(t *testing.T) {
	clearEnv(t)

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, defaultConfig().ChatGPT.Model, cfg.ChatGPT.Model)
}

func TestScoringConfigUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := RankingConfig{Mode: "vibes"}.ScoringConfig()
	assert.Error(t, err)
}
