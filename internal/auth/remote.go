package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RemoteTokenProvider fetches an access token from a service answering
// GET requests with {"accessToken": ...}.
type RemoteTokenProvider struct {
	endpoint   string
	httpClient *http.Client
}

func NewRemoteTokenProvider(endpoint string, httpClient *http.Client) *RemoteTokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteTokenProvider{endpoint: endpoint, httpClient: httpClient}
}

func (p *RemoteTokenProvider) AccessToken(ctx context.Context) (AccessToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return AccessToken{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: %w", ErrCredentialRejected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return AccessToken{}, fmt.Errorf("%w: token endpoint returned status %d", ErrCredentialRejected, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return AccessToken{}, fmt.Errorf("%w: decode response: %w", ErrCredentialRejected, err)
	}
	if body.AccessToken == "" {
		return AccessToken{}, ErrEmptyToken
	}

	return AccessToken{Value: body.AccessToken}, nil
}
