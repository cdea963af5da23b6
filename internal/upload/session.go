// Package upload drives the two-phase resumable upload protocol: a metadata
// POST that opens a session, then a single PUT of the whole payload.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"uploadpilot/internal/auth"
)

const DefaultUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"

type State int

const (
	StateIdle State = iota
	StateInitiating
	StateEstablished
	StateTransferring
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitiating:
		return "initiating"
	case StateEstablished:
		return "established"
	case StateTransferring:
		return "transferring"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// MediaInfo describes the payload announced at initiation.
type MediaInfo struct {
	Size        int64
	ContentType string
}

// Session is a single resumable upload. It is not reusable: once Completed
// or Failed every further call returns ErrInvalidState.
type Session struct {
	httpClient *http.Client
	uploadURL  string

	mu       sync.Mutex
	state    State
	location string
	videoID  string
	err      error
}

func NewSession(httpClient *http.Client, uploadURL string) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	return &Session{
		httpClient: httpClient,
		uploadURL:  uploadURL,
		state:      StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Location is the session URI returned by initiation, empty until Established.
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

func (s *Session) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}

// Err is the error that moved the session to Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, s.state, from)
	}
	s.state = to
	return nil
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.err = err
	return err
}

// Initiate sends the video metadata and records the session URI.
func (s *Session) Initiate(ctx context.Context, token auth.AccessToken, video *youtube.Video, media MediaInfo) error {
	if err := s.transition(StateIdle, StateInitiating); err != nil {
		return err
	}

	body, err := json.Marshal(video)
	if err != nil {
		return s.fail(&ProtocolError{Err: fmt.Errorf("marshal metadata: %w", err)})
	}

	url := fmt.Sprintf("%s?part=snippet,status&uploadType=resumable", s.uploadURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return s.fail(&ProtocolError{Err: fmt.Errorf("create request: %w", err)})
	}

	req.Header.Set("Authorization", "Bearer "+token.Value)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if media.Size > 0 {
		req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(media.Size, 10))
	}
	if media.ContentType != "" {
		req.Header.Set("X-Upload-Content-Type", media.ContentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fail(&ProtocolError{Err: fmt.Errorf("initiate upload: %w", err)})
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return s.fail(&ProtocolError{
			StatusCode: resp.StatusCode,
			Message:    platformMessage(err),
			Err:        err,
		})
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return s.fail(&ProtocolError{StatusCode: resp.StatusCode, Err: ErrMissingSessionLocation})
	}

	s.mu.Lock()
	s.location = location
	s.state = StateEstablished
	s.mu.Unlock()
	return nil
}

// Transfer streams the payload to the session URI in one request and
// returns the platform-assigned video id.
func (s *Session) Transfer(ctx context.Context, body io.Reader, size int64, contentType string) (string, error) {
	if err := s.transition(StateEstablished, StateTransferring); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.Location(), body)
	if err != nil {
		return "", s.fail(&TransferError{Err: fmt.Errorf("create request: %w", err)})
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", s.fail(&TransferError{Err: fmt.Errorf("send video: %w", err)})
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", s.fail(&TransferError{
			StatusCode: resp.StatusCode,
			Message:    platformMessage(err),
			Err:        err,
		})
	}

	var uploaded youtube.Video
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", s.fail(&ProtocolError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)})
	}
	if uploaded.Id == "" {
		return "", s.fail(&ProtocolError{StatusCode: resp.StatusCode, Err: errors.New("response has no video id")})
	}

	s.mu.Lock()
	s.videoID = uploaded.Id
	s.state = StateCompleted
	s.mu.Unlock()
	return uploaded.Id, nil
}

func platformMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
