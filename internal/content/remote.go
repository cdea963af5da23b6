package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RemoteGenerator delegates generation to an HTTP service that accepts
// {"topic": ...} and answers with {"title": ..., "description": ...}.
type RemoteGenerator struct {
	endpoint   string
	httpClient *http.Client
}

func NewRemoteGenerator(endpoint string, httpClient *http.Client) *RemoteGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteGenerator{endpoint: endpoint, httpClient: httpClient}
}

func (g *RemoteGenerator) Generate(ctx context.Context, topic string) (*Metadata, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrUpstream, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return ParseMetadata(string(data))
}
