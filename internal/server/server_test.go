package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"uploadpilot/internal/auth"
	"uploadpilot/internal/content"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, topic string) (*content.Metadata, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Metadata), args.Error(1)
}

type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) AccessToken(ctx context.Context) (auth.AccessToken, error) {
	args := m.Called(ctx)
	return args.Get(0).(auth.AccessToken), args.Error(1)
}

func setupServerTest() (http.Handler, *MockGenerator, *MockTokenProvider) {
	gen := new(MockGenerator)
	tokens := new(MockTokenProvider)
	return NewHandler(gen, tokens).Routes(), gen, tokens
}

func TestGenerateDetails(t *testing.T) {
	router, gen, _ := setupServerTest()
	gen.On("Generate", mock.Anything, "funny cat video").Return(&content.Metadata{
		Title:       "You WON'T BELIEVE This Cat!",
		Description: "So funny. #cats #viral #shorts",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-details", strings.NewReader(`{"topic":"funny cat video"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp content.Metadata
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "You WON'T BELIEVE This Cat!", resp.Title)
	assert.Equal(t, "So funny. #cats #viral #shorts", resp.Description)
	gen.AssertExpectations(t)
}

func TestGenerateDetailsErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		genErr     error
		wantStatus int
		wantError  string
	}{
		{"emptyTopic", `{"topic":""}`, nil, http.StatusBadRequest, "Topic is required"},
		{"missingTopic", `{}`, nil, http.StatusBadRequest, "Topic is required"},
		{"invalidJSON", `{topic`, nil, http.StatusBadRequest, "Invalid request body"},
		{"upstreamFailure", `{"topic":"cats"}`, content.ErrUpstream, http.StatusBadGateway, "Failed to generate video details."},
		{"malformed", `{"topic":"cats"}`, fmt.Errorf("%w: missing title", content.ErrMalformedResponse), http.StatusBadGateway, "Failed to generate video details."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, gen, _ := setupServerTest()
			if tt.genErr != nil {
				gen.On("Generate", mock.Anything, "cats").Return(nil, tt.genErr)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/generate-details", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)

			if tt.genErr == nil {
				gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGetUploadToken(t *testing.T) {
	router, _, tokens := setupServerTest()
	tokens.On("AccessToken", mock.Anything).Return(auth.AccessToken{Value: "ya29.token"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/get-upload-token", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ya29.token", resp.AccessToken)
}

func TestGetUploadTokenFailure(t *testing.T) {
	router, _, tokens := setupServerTest()
	tokens.On("AccessToken", mock.Anything).Return(auth.AccessToken{}, errors.Join(auth.ErrCredentialRejected, errors.New("invalid_grant")))

	req := httptest.NewRequest(http.MethodGet, "/api/get-upload-token", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to get access token.", resp.Error)
	assert.NotContains(t, rr.Body.String(), "invalid_grant")
}

func TestUnknownRoute(t *testing.T) {
	router, _, _ := setupServerTest()

	req := httptest.NewRequest(http.MethodGet, "/api/generate-details", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()

	cancel()
	assert.NoError(t, <-done)
}
