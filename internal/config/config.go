package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FlowAdvisor/internal/scoring"
)

const (
	configPathEnv     = "FLOWADVISOR_CONFIG"
	apiKeyEnv         = "OPENAI_API_KEY"
	modelEnv          = "FLOWADVISOR_MODEL"
	databaseDSNEnv    = "DATABASE_DSN"
	databaseDriverEnv = "FLOWADVISOR_DB_DRIVER"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	jwtSecretEnv      = "FLOWADVISOR_JWT_SECRET"
	logLevelEnv       = "FLOWADVISOR_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Ranking       RankingConfig      `yaml:"ranking"`
	Explainer     ExplainerConfig    `yaml:"explainer"`
	Vitals        VitalsConfig       `yaml:"vitals"`
	Server        ServerConfig       `yaml:"server"`
	Notifications NotificationConfig `yaml:"notifications"`
	Watch         WatchConfig        `yaml:"watch"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects the task database.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ChatGPTConfig defines how to contact the chat-completions API.
type ChatGPTConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
	Seed        *int          `yaml:"seed"`
}

// RankingConfig tunes local scoring and the hybrid path.
type RankingConfig struct {
	UseRemote *bool                   `yaml:"useRemote"`
	TopK      int                     `yaml:"topK"`
	Mode      string                  `yaml:"mode"`
	Weights   scoring.WeightOverrides `yaml:"weights"`
}

// RemoteEnabled reports whether the hybrid path was requested.
func (r RankingConfig) RemoteEnabled() bool {
	return r.UseRemote == nil || *r.UseRemote
}

// ScoringConfig resolves the preset named by Mode and applies weight overrides.
func (r RankingConfig) ScoringConfig() (scoring.Config, error) {
	cfg, err := scoring.ConfigForMode(r.Mode)
	if err != nil {
		return scoring.Config{}, err
	}
	cfg.Weights = cfg.Weights.Apply(r.Weights)
	return cfg, nil
}

// ExplainerConfig configures the optional coaching message.
type ExplainerConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// VitalsConfig holds fallback physiological readings.
type VitalsConfig struct {
	HeartRateBPM *float64 `yaml:"heartRateBPM"`
	HRVSDNNms    *float64 `yaml:"hrvSDNNms"`
}

// ServerConfig describes the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	JWTSecret      string   `yaml:"jwtSecret"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// WatchConfig defines how often the watcher recomputes.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Emotion  string        `yaml:"emotion"`
}

// Load reads YAML configuration from the path named by FLOWADVISOR_CONFIG.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration (if present) and applies environment overrides.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}
	if v := os.Getenv(modelEnv); v != "" {
		c.ChatGPT.Model = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.Timeout > 0 {
		base.ChatGPT.Timeout = override.ChatGPT.Timeout
	}
	if override.ChatGPT.Temperature > 0 {
		base.ChatGPT.Temperature = override.ChatGPT.Temperature
	}
	if override.ChatGPT.Seed != nil {
		base.ChatGPT.Seed = override.ChatGPT.Seed
	}

	if override.Ranking.UseRemote != nil {
		base.Ranking.UseRemote = override.Ranking.UseRemote
	}
	if override.Ranking.TopK > 0 {
		base.Ranking.TopK = override.Ranking.TopK
	}
	if override.Ranking.Mode != "" {
		base.Ranking.Mode = override.Ranking.Mode
	}
	base.Ranking.Weights = override.Ranking.Weights

	if override.Explainer.Enabled {
		base.Explainer.Enabled = true
	}
	if override.Explainer.Model != "" {
		base.Explainer.Model = override.Explainer.Model
	}
	if override.Explainer.Temperature > 0 {
		base.Explainer.Temperature = override.Explainer.Temperature
	}
	if override.Explainer.MaxTokens > 0 {
		base.Explainer.MaxTokens = override.Explainer.MaxTokens
	}

	if override.Vitals.HeartRateBPM != nil {
		base.Vitals.HeartRateBPM = override.Vitals.HeartRateBPM
	}
	if override.Vitals.HRVSDNNms != nil {
		base.Vitals.HRVSDNNms = override.Vitals.HRVSDNNms
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.JWTSecret != "" {
		base.Server.JWTSecret = override.Server.JWTSecret
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Watch.Interval > 0 {
		base.Watch.Interval = override.Watch.Interval
	}
	if override.Watch.Emotion != "" {
		base.Watch.Emotion = override.Watch.Emotion
	}

	return base
}

func defaultConfig() Config {
	seed := 7
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Driver: "sqlite", DSN: defaultDatabasePath()},
		ChatGPT: ChatGPTConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "o4-mini",
			Timeout:     20 * time.Second,
			Temperature: 0.2,
			Seed:        &seed,
		},
		Ranking: RankingConfig{TopK: 5, Mode: scoring.ModeAlgorithm},
		Explainer: ExplainerConfig{
			Model:       "gpt-4o",
			Temperature: 0.4,
			MaxTokens:   300,
		},
		Server: ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		Watch:  WatchConfig{Interval: 15 * time.Minute, Emotion: "neutral"},
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".flowadvisor", "tasks.db")
	}
	return filepath.Join(home, ".flowadvisor", "tasks.db")
}
