package content

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"uploadpilot/pkg/prompts"
)

type GroqGenerator struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

// NewGroqGenerator creates a generator backed by the Groq chat API. An empty
// baseURL uses the public endpoint.
func NewGroqGenerator(apiKey, model, baseURL string, p *prompts.Prompts) (*GroqGenerator, error) {
	var client *groq.Client
	var err error
	if baseURL != "" {
		client, err = groq.NewClient(apiKey, groq.WithBaseURL(baseURL))
	} else {
		client, err = groq.NewClient(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqGenerator{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (g *GroqGenerator) Generate(ctx context.Context, topic string) (*Metadata, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}

	prompt, err := g.prompts.RenderMetadata(prompts.MetadataParams{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := g.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: g.prompts.System},
			{Role: groq.RoleUser, Content: prompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %w", ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response", ErrMalformedResponse)
	}

	return ParseMetadata(resp.Choices[0].Message.Content)
}
