// Package app assembles the generator, token provider, media opener and
// upload orchestrator from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"uploadpilot/internal/auth"
	"uploadpilot/internal/content"
	"uploadpilot/internal/media"
	"uploadpilot/internal/publish"
	"uploadpilot/pkg/config"
	"uploadpilot/pkg/httputil"
	"uploadpilot/pkg/prompts"
)

type App struct {
	Config       *config.Config
	Generator    content.Generator
	Tokens       auth.TokenProvider
	Media        *media.Opener
	Orchestrator *publish.Orchestrator
	HTTPClient   *http.Client
}

func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	apiClient := httputil.NewClient(cfg.Generator.Timeout)

	generator, err := BuildGenerator(ctx, cfg, apiClient)
	if err != nil {
		return nil, err
	}

	tokens, err := BuildTokenProvider(cfg, apiClient)
	if err != nil {
		return nil, err
	}

	// Transfers can run for a long time, so the upload client has no deadline.
	uploadClient := httputil.NewClient(0)

	return &App{
		Config:    cfg,
		Generator: generator,
		Tokens:    tokens,
		Media:     media.NewOpener(cfg.AWS.Region, cfg.AWS.Endpoint),
		Orchestrator: publish.NewOrchestrator(tokens, publish.Options{
			HTTPClient: uploadClient,
			UploadURL:  cfg.YouTube.UploadURL,
			CategoryID: cfg.YouTube.CategoryID,
		}),
		HTTPClient: apiClient,
	}, nil
}

func BuildGenerator(ctx context.Context, cfg *config.Config, httpClient *http.Client) (content.Generator, error) {
	if cfg.Generator.Provider == config.ProviderRemote {
		return content.NewRemoteGenerator(cfg.Generator.Endpoint, httpClient), nil
	}

	p, err := prompts.LoadFrom(promptsPath(cfg))
	if err != nil {
		return nil, err
	}

	switch cfg.Generator.Provider {
	case config.ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY must be set for the groq generator")
		}
		return content.NewGroqGenerator(cfg.GroqAPIKey, cfg.Generator.GroqModel, "", p)
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set for the gemini generator")
		}
		return content.NewGeminiGenerator(ctx, content.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.Generator.GeminiModel,
			HTTPClient: httpClient,
		}, p)
	}
}

func BuildTokenProvider(cfg *config.Config, httpClient *http.Client) (auth.TokenProvider, error) {
	if cfg.YouTube.TokenSource == config.TokenSourceRemote {
		return auth.NewRemoteTokenProvider(cfg.YouTube.TokenEndpoint, httpClient), nil
	}

	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set in .env")
	}

	oauthConfig := auth.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.YouTube.RedirectURL)
	return auth.NewRefreshTokenProvider(oauthConfig, cfg.GoogleRefreshToken, cfg.YouTubeTokenPath, httpClient), nil
}

func promptsPath(cfg *config.Config) string {
	if cfg.Generator.PromptsPath != "" {
		return cfg.Generator.PromptsPath
	}
	return "prompts.yaml"
}
