package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultTokenPath      = "./youtube_token.json"
	defaultProvider       = ProviderGemini
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGroqModel      = "llama-3.3-70b-versatile"
	defaultGenerateURL    = "http://localhost:8080/api/generate-details"
	defaultTokenURL       = "http://localhost:8080/api/get-upload-token"
	defaultUploadURL      = "https://www.googleapis.com/upload/youtube/v3/videos"
	defaultTokenSource    = TokenSourceRefresh
	defaultMinLead        = 10 * time.Minute
	defaultServerAddr     = ":8080"
	defaultRedirectURL    = "http://localhost:8085/callback"
	defaultAWSRegion      = "us-east-1"
	defaultRequestTimeout = 30 * time.Second
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderRemote = "remote"

	TokenSourceRefresh = "refresh"
	TokenSourceRemote  = "remote"

	SecretsSecretManager = "secretmanager"
)

type Config struct {
	GoogleClientID     string `yaml:"-"`
	GoogleClientSecret string `yaml:"-"`
	GoogleRefreshToken string `yaml:"-"`
	GeminiAPIKey       string `yaml:"-"`
	GroqAPIKey         string `yaml:"-"`
	YouTubeTokenPath   string `yaml:"-"`
	GCPProject         string `yaml:"-"`

	Generator GeneratorConfig `yaml:"generator"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Server    ServerConfig    `yaml:"server"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	AWS       AWSConfig       `yaml:"aws"`
}

type GeneratorConfig struct {
	Provider    string        `yaml:"provider"` // "gemini", "groq" or "remote"
	GeminiModel string        `yaml:"gemini_model"`
	GroqModel   string        `yaml:"groq_model"`
	Endpoint    string        `yaml:"endpoint"`
	PromptsPath string        `yaml:"prompts_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

type YouTubeConfig struct {
	UploadURL     string `yaml:"upload_url"`
	CategoryID    string `yaml:"category_id"`
	TokenSource   string `yaml:"token_source"` // "refresh" or "remote"
	TokenEndpoint string `yaml:"token_endpoint"`
	RedirectURL   string `yaml:"redirect_url"`
}

type ScheduleConfig struct {
	MinLead time.Duration `yaml:"min_lead"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SecretsConfig struct {
	Provider string `yaml:"provider"` // "" (env only) or "secretmanager"
}

type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, defaultConfigPath)
}

func LoadFrom(ctx context.Context, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		YouTubeTokenPath:   getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		GCPProject:         os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg, path); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Secrets.Provider == SecretsSecretManager {
		if err := resolveSecrets(ctx, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config file found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyGeneratorDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applyScheduleDefaults(cfg)
	applyServerDefaults(cfg)
	applyAWSDefaults(cfg)
}

func applyGeneratorDefaults(cfg *Config) {
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = defaultProvider
	}
	if cfg.Generator.GeminiModel == "" {
		cfg.Generator.GeminiModel = defaultGeminiModel
	}
	if cfg.Generator.GroqModel == "" {
		cfg.Generator.GroqModel = defaultGroqModel
	}
	if cfg.Generator.Endpoint == "" {
		cfg.Generator.Endpoint = defaultGenerateURL
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = defaultRequestTimeout
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.UploadURL == "" {
		cfg.YouTube.UploadURL = defaultUploadURL
	}
	if cfg.YouTube.TokenSource == "" {
		cfg.YouTube.TokenSource = defaultTokenSource
	}
	if cfg.YouTube.TokenEndpoint == "" {
		cfg.YouTube.TokenEndpoint = defaultTokenURL
	}
	if cfg.YouTube.RedirectURL == "" {
		cfg.YouTube.RedirectURL = defaultRedirectURL
	}
}

func applyScheduleDefaults(cfg *Config) {
	if cfg.Schedule.MinLead == 0 {
		cfg.Schedule.MinLead = defaultMinLead
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
}

func applyAWSDefaults(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = defaultAWSRegion
	}
}

func (c *Config) validate() error {
	switch c.Generator.Provider {
	case ProviderGemini, ProviderGroq, ProviderRemote:
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}

	switch c.YouTube.TokenSource {
	case TokenSourceRefresh, TokenSourceRemote:
	default:
		return fmt.Errorf("unknown token source %q", c.YouTube.TokenSource)
	}

	switch c.Secrets.Provider {
	case "", SecretsSecretManager:
	default:
		return fmt.Errorf("unknown secrets provider %q", c.Secrets.Provider)
	}

	if c.Secrets.Provider == SecretsSecretManager && c.GCPProject == "" {
		return errors.New("secrets.provider secretmanager requires GOOGLE_CLOUD_PROJECT")
	}
	return nil
}

// HasOAuthClient reports whether the OAuth client credentials needed for a
// refresh-token exchange are present.
func (c *Config) HasOAuthClient() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
