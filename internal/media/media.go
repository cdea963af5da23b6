// Package media opens the video payload for an upload from the local disk,
// a Cloud Storage bucket (gs://) or an S3 bucket (s3://).
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
)

var (
	ErrNotVideo  = errors.New("not a video file")
	ErrEmptyFile = errors.New("video file is empty")
)

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".3gp":  "video/3gpp",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
}

// Payload is an opened video. It streams from its source and must be
// closed by whoever opened it.
type Payload struct {
	Name        string
	ContentType string
	Size        int64

	body io.ReadCloser
}

func NewPayload(name, contentType string, size int64, body io.ReadCloser) *Payload {
	return &Payload{Name: name, ContentType: contentType, Size: size, body: body}
}

func (p *Payload) Read(b []byte) (int, error) {
	return p.body.Read(b)
}

func (p *Payload) Close() error {
	if p.body == nil {
		return nil
	}
	return p.body.Close()
}

// IsVideo reports whether name has a recognised video extension.
func IsVideo(name string) bool {
	_, ok := videoTypes[strings.ToLower(path.Ext(name))]
	return ok
}

// ContentTypeFor returns the MIME type for a video file name.
func ContentTypeFor(name string) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := videoTypes[ext]; ok {
		return ct, nil
	}
	if ct := mime.TypeByExtension(ext); strings.HasPrefix(ct, "video/") {
		return ct, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotVideo, name)
}

type Source interface {
	Open(ctx context.Context, location string) (*Payload, error)
	List(ctx context.Context, location string) ([]string, error)
}

// Opener dispatches on the location scheme. Cloud clients are created on
// first use so local uploads need no cloud credentials.
type Opener struct {
	Local LocalSource
	GCS   *GCSSource
	S3    *S3Source
}

func NewOpener(awsRegion, awsEndpoint string) *Opener {
	return &Opener{
		GCS: &GCSSource{},
		S3:  &S3Source{Region: awsRegion, Endpoint: awsEndpoint},
	}
}

func (o *Opener) source(location string) Source {
	switch {
	case strings.HasPrefix(location, gcsScheme) && o.GCS != nil:
		return o.GCS
	case strings.HasPrefix(location, s3Scheme) && o.S3 != nil:
		return o.S3
	default:
		return o.Local
	}
}

func (o *Opener) Open(ctx context.Context, location string) (*Payload, error) {
	return o.source(location).Open(ctx, location)
}

// List returns the video locations under a directory or bucket prefix.
func (o *Opener) List(ctx context.Context, location string) ([]string, error) {
	return o.source(location).List(ctx, location)
}

// Close releases any cloud client opened by a previous call.
func (o *Opener) Close() error {
	if o.GCS == nil {
		return nil
	}
	return o.GCS.Close()
}

func splitBucketPath(location, scheme string) (string, string, error) {
	rest := strings.TrimPrefix(location, scheme)
	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid location %q: missing bucket", location)
	}
	return bucket, object, nil
}
