package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort           string
	LogLevel             slog.Level
	LogFormat            string
	GitHubAppID          int64
	GitHubWebhookSecret  string
	GitHubPrivateKeyPath string
	LLMProvider          string
	LLMHost              string
	LLMModelName         string
	LLMAPIKey            string
	MaxWorkers           int
	DatabaseDSN          string
	MaxCriticalIssues    int
	MaxHighIssues        int
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("LLM_HOST", "http://localhost:11434")
	viper.SetDefault("LLM_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/professor-app.private-key.pem")
	viper.SetDefault("MAX_CRITICAL_ISSUES", 0)
	viper.SetDefault("MAX_HIGH_ISSUES", 1)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}
	viper.AutomaticEnv()

	if viper.GetInt64("GITHUB_APP_ID") == 0 {
		return nil, fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if viper.GetString("GITHUB_WEBHOOK_SECRET") == "" {
		return nil, fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}

	return &Config{
		ServerPort:           viper.GetString("SERVER_PORT"),
		LogLevel:             parseLogLevel(viper.GetString("LOG_LEVEL")),
		LogFormat:            viper.GetString("LOG_FORMAT"),
		GitHubAppID:          viper.GetInt64("GITHUB_APP_ID"),
		GitHubWebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
		GitHubPrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		LLMProvider:          viper.GetString("LLM_PROVIDER"),
		LLMHost:              viper.GetString("LLM_HOST"),
		LLMModelName:         viper.GetString("LLM_MODEL_NAME"),
		LLMAPIKey:            viper.GetString("LLM_API_KEY"),
		MaxWorkers:           viper.GetInt("MAX_WORKERS"),
		DatabaseDSN:          viper.GetString("DATABASE_DSN"),
		MaxCriticalIssues:    viper.GetInt("MAX_CRITICAL_ISSUES"),
		MaxHighIssues:        viper.GetInt("MAX_HIGH_ISSUES"),
	}, nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", raw)
		return slog.LevelInfo
	}
}
