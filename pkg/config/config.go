package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/sderosiaux/gong-to-github/errors"
	"github.com/sderosiaux/gong-to-github/pkg/validator"
)

// Config holds application configuration
type Config struct {
	Environment string
	Gong        GongConfig
	GitHub      GitHubConfig
	Sync        SyncConfig
}

// GongConfig holds Gong API configuration
type GongConfig struct {
	AccessKey         string `validate:"required"`
	SecretKey         string `validate:"required"`
	BaseURL           string `validate:"required,url"`
	RequestsPerSecond float64
	RequestTimeout    time.Duration
}

// GitHubConfig holds GitHub sync configuration
type GitHubConfig struct {
	Token  string
	Repo   string
	Branch string
}

// SyncConfig holds output and state configuration
type SyncConfig struct {
	OutputDir string
	StateFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "production"),
		Gong: GongConfig{
			AccessKey:         getEnv("GONG_ACCESS_KEY", ""),
			SecretKey:         getEnv("GONG_SECRET_KEY", ""),
			BaseURL:           getEnv("GONG_API_URL", "https://api.gong.io"),
			RequestsPerSecond: getEnvAsFloat("GONG_REQUESTS_PER_SECOND", 3),
			RequestTimeout:    getEnvAsDuration("GONG_REQUEST_TIMEOUT", "30s"),
		},
		GitHub: GitHubConfig{
			Token:  getEnv("GITHUB_TOKEN", ""),
			Repo:   getEnv("GITHUB_REPO", ""),
			Branch: getEnv("GITHUB_BRANCH", "main"),
		},
		Sync: SyncConfig{
			OutputDir: getEnv("SYNC_OUTPUT_DIR", "./output"),
			StateFile: getEnv("SYNC_STATE_FILE", "./.gong-sync-state.json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration needed by every command
func (c *Config) Validate() error {
	if err := validator.New().Validate(c.Gong); err != nil {
		return apperrors.ErrConfigInvalid(err)
	}
	return nil
}

// RequireGitHub validates the fields the GitHub sync target needs
func (c *Config) RequireGitHub() error {
	type githubRequired struct {
		Token string `validate:"required"`
		Repo  string `validate:"required"`
	}
	req := githubRequired{Token: c.GitHub.Token, Repo: c.GitHub.Repo}
	if err := validator.New().Validate(req); err != nil {
		return apperrors.ErrConfigInvalid(err)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
