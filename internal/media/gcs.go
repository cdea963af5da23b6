package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// GCSSource reads payloads from Cloud Storage using application default
// credentials unless ClientOptions say otherwise.
type GCSSource struct {
	ClientOptions []option.ClientOption

	once   sync.Once
	client *storage.Client
	err    error
}

func (s *GCSSource) storageClient(ctx context.Context) (*storage.Client, error) {
	s.once.Do(func() {
		s.client, s.err = storage.NewClient(ctx, s.ClientOptions...)
		if s.err != nil {
			s.err = fmt.Errorf("failed to create GCS client: %w", s.err)
		}
	})
	return s.client, s.err
}

func (s *GCSSource) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GCSSource) Open(ctx context.Context, location string) (*Payload, error) {
	bucket, object, err := splitBucketPath(location, gcsScheme)
	if err != nil {
		return nil, err
	}
	if !IsVideo(object) {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, location)
	}

	client, err := s.storageClient(ctx)
	if err != nil {
		return nil, err
	}

	obj := client.Bucket(bucket).Object(object)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	if attrs.Size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, location)
	}

	contentType := attrs.ContentType
	if !isVideoType(contentType) {
		contentType, _ = ContentTypeFor(object)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}

	return NewPayload(path.Base(object), contentType, attrs.Size, r), nil
}

func (s *GCSSource) List(ctx context.Context, location string) ([]string, error) {
	bucket, prefix, err := splitBucketPath(location, gcsScheme)
	if err != nil {
		return nil, err
	}

	client, err := s.storageClient(ctx)
	if err != nil {
		return nil, err
	}

	var videos []string
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		if IsVideo(attrs.Name) {
			videos = append(videos, gcsScheme+bucket+"/"+attrs.Name)
		}
	}

	return videos, nil
}
