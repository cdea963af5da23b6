package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// RefreshTokenProvider exchanges a long-lived refresh token for a fresh
// access token on every call. The refresh token comes from configuration
// or, when that is empty, from the saved token file.
type RefreshTokenProvider struct {
	config       *oauth2.Config
	refreshToken string
	tokenPath    string
	httpClient   *http.Client
}

func NewRefreshTokenProvider(config *oauth2.Config, refreshToken, tokenPath string, httpClient *http.Client) *RefreshTokenProvider {
	return &RefreshTokenProvider{
		config:       config,
		refreshToken: refreshToken,
		tokenPath:    tokenPath,
		httpClient:   httpClient,
	}
}

func (p *RefreshTokenProvider) AccessToken(ctx context.Context) (AccessToken, error) {
	refreshToken, err := p.resolveRefreshToken()
	if err != nil {
		return AccessToken{}, err
	}

	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: %w", ErrCredentialRejected, err)
	}
	if token.AccessToken == "" {
		return AccessToken{}, ErrEmptyToken
	}

	return AccessToken{Value: token.AccessToken}, nil
}

func (p *RefreshTokenProvider) resolveRefreshToken() (string, error) {
	if p.refreshToken != "" {
		return p.refreshToken, nil
	}
	if p.tokenPath == "" {
		return "", ErrNoRefreshToken
	}

	token, err := LoadToken(p.tokenPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoRefreshToken, err)
	}
	if token.RefreshToken == "" {
		return "", fmt.Errorf("%w: token file has no refresh token", ErrNoRefreshToken)
	}
	return token.RefreshToken, nil
}
