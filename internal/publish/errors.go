package publish

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile            = errors.New("please select a video file")
	ErrNoTitle           = errors.New("please generate or enter a title")
	ErrNoPublishTime     = errors.New("please choose a publish time")
	ErrPublishTimeInPast = errors.New("publish time must be in the future")
	ErrBusy              = errors.New("an upload is already in progress")
)

type Kind int

const (
	KindInputValidation Kind = iota + 1
	KindUpstreamAuth
	KindGeneration
	KindProtocol
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "input validation"
	case KindUpstreamAuth:
		return "upstream auth"
	case KindGeneration:
		return "generation"
	case KindProtocol:
		return "protocol"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Error is the single failure a submission reports: which phase failed,
// how it is classified, and the upstream cause.
type Error struct {
	Kind  Kind
	Phase Phase
	Err   error
}

func NewError(kind Kind, phase Phase, err error) *Error {
	return &Error{Kind: kind, Phase: phase, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase.Label(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var pubErr *Error
	if errors.As(err, &pubErr) {
		return pubErr.Kind
	}
	return 0
}
