// Package content produces publish metadata (title and hashtag-bearing
// description) for a video topic using a generative text backend.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("topic is required")
	ErrMalformedResponse = errors.New("malformed generation response")
	ErrUpstream          = errors.New("generation backend failed")
)

// Metadata is the generated title and description. Callers edit copies;
// generators never hand out partially filled values.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Generator interface {
	Generate(ctx context.Context, topic string) (*Metadata, error)
}

func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return ErrInvalidInput
	}
	return nil
}

// StripCodeFence removes a leading ``` marker (with optional language tag)
// and a trailing ``` marker. Applying it twice gives the same result.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if i := strings.IndexAny(rest, "\n{["); i >= 0 {
			s = rest[i:]
		} else {
			s = ""
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseMetadata decodes a generation response into Metadata. Both keys must
// be present as strings; anything else is ErrMalformedResponse.
func ParseMetadata(raw string) (*Metadata, error) {
	payload := StripCodeFence(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var decoded struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}

	if decoded.Title == nil {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}
	if decoded.Description == nil {
		return nil, fmt.Errorf("%w: missing description", ErrMalformedResponse)
	}

	return &Metadata{
		Title:       *decoded.Title,
		Description: *decoded.Description,
	}, nil
}
