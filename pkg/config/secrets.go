package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

type secretAccessor interface {
	Access(ctx context.Context, name string) (string, error)
	Close() error
}

type gcpSecrets struct {
	client  *secretmanager.Client
	project string
}

var newSecretAccessor = func(ctx context.Context, project string) (secretAccessor, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &gcpSecrets{client: client, project: project}, nil
}

func (s *gcpSecrets) Access(ctx context.Context, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (s *gcpSecrets) Close() error {
	return s.client.Close()
}

type secretField struct {
	name string
	dst  *string
}

func secretFields(cfg *Config) []secretField {
	return []secretField{
		{"GOOGLE_CLIENT_ID", &cfg.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret},
		{"GOOGLE_REFRESH_TOKEN", &cfg.GoogleRefreshToken},
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"GROQ_API_KEY", &cfg.GroqAPIKey},
	}
}

func resolveSecrets(ctx context.Context, cfg *Config) error {
	accessor, err := newSecretAccessor(ctx, cfg.GCPProject)
	if err != nil {
		return err
	}
	defer func() { _ = accessor.Close() }()

	fillSecrets(ctx, cfg, accessor)
	return nil
}

// fillSecrets only touches fields the environment left empty.
func fillSecrets(ctx context.Context, cfg *Config, accessor secretAccessor) {
	for _, field := range secretFields(cfg) {
		if *field.dst != "" {
			continue
		}
		value, err := accessor.Access(ctx, field.name)
		if err != nil {
			slog.Warn("Secret not resolved", "secret", field.name, "error", err)
			continue
		}
		*field.dst = strings.TrimSpace(value)
	}
}
