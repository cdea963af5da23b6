// Package youtube reads and adjusts videos after upload through the
// YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"uploadpilot/internal/auth"
)

var (
	ErrNotFound       = errors.New("video not found")
	ErrInvalidPrivacy = errors.New("privacy must be public, unlisted or private")
)

type VideoStatus struct {
	ID              string
	Title           string
	UploadStatus    string
	PrivacyStatus   string
	PublishAt       string
	FailureReason   string
	RejectionReason string
}

// Scheduled reports whether the video is waiting for a timed release.
func (s VideoStatus) Scheduled() bool {
	return s.PrivacyStatus == "private" && s.PublishAt != ""
}

type Client struct {
	svc *ytapi.Service
}

func NewClient(ctx context.Context, tokens auth.TokenProvider, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(TokenSource(ctx, tokens))}, opts...)
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get YouTube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) Status(ctx context.Context, videoID string) (*VideoStatus, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "status"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video status: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	}

	item := resp.Items[0]
	status := &VideoStatus{ID: item.Id}
	if item.Snippet != nil {
		status.Title = item.Snippet.Title
	}
	if item.Status != nil {
		status.UploadStatus = item.Status.UploadStatus
		status.PrivacyStatus = item.Status.PrivacyStatus
		status.PublishAt = item.Status.PublishAt
		status.FailureReason = item.Status.FailureReason
		status.RejectionReason = item.Status.RejectionReason
	}
	return status, nil
}

// SetPrivacy changes the visibility of an uploaded video. Making a video
// public clears any pending publish time.
func (c *Client) SetPrivacy(ctx context.Context, videoID, privacy string) error {
	switch privacy {
	case "public", "unlisted", "private":
	default:
		return ErrInvalidPrivacy
	}

	video := &ytapi.Video{
		Id: videoID,
		Status: &ytapi.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
	if _, err := c.svc.Videos.Update([]string{"status"}, video).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

type providerSource struct {
	ctx    context.Context
	tokens auth.TokenProvider
}

// TokenSource adapts a TokenProvider for Google API clients.
func TokenSource(ctx context.Context, tokens auth.TokenProvider) oauth2.TokenSource {
	return &providerSource{ctx: ctx, tokens: tokens}
}

func (s *providerSource) Token() (*oauth2.Token, error) {
	token, err := s.tokens.AccessToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token.Value, TokenType: "Bearer"}, nil
}
