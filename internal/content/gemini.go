package content

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"uploadpilot/pkg/prompts"
)

var metadataSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString, Description: "Catchy video title"},
		"description": {Type: genai.TypeString, Description: "Video description ending with hashtags"},
	},
	Required: []string{"title", "description"},
}

type GeminiGenerator struct {
	client  *genai.Client
	model   string
	prompts *prompts.Prompts
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiGenerator(ctx context.Context, opts GeminiOptions, p *prompts.Prompts) (*GeminiGenerator, error) {
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		model:   opts.Model,
		prompts: p,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, topic string) (*Metadata, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}

	prompt, err := g.prompts.RenderMetadata(prompts.MetadataParams{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: g.prompts.System}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   metadataSchema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %w", ErrUpstream, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no response", ErrMalformedResponse)
	}

	return ParseMetadata(resp.Candidates[0].Content.Parts[0].Text)
}
