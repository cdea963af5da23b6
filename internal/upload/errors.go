package upload

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState           = errors.New("invalid upload session state")
	ErrMissingSessionLocation = errors.New("could not get resumable upload URL")
)

// ProtocolError reports a failed initiation or an unusable platform response.
// Message holds the platform's own error text when it sent one.
type ProtocolError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("YouTube API error: %s", e.Message)
	case e.Err != nil:
		return fmt.Sprintf("YouTube API error: %v", e.Err)
	default:
		return fmt.Sprintf("YouTube API error: status %d", e.StatusCode)
	}
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransferError reports a rejected payload transfer.
type TransferError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransferError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("video file upload failed: %s", e.Message)
	case e.Err != nil:
		return fmt.Sprintf("video file upload failed: %v", e.Err)
	default:
		return fmt.Sprintf("video file upload failed: status %d", e.StatusCode)
	}
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
