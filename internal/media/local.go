package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalSource struct{}

func (LocalSource) Open(ctx context.Context, location string) (*Payload, error) {
	contentType, err := ContentTypeFor(location)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat video file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotVideo, location)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, location)
	}

	return NewPayload(filepath.Base(location), contentType, info.Size(), f), nil
}

func (LocalSource) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read video directory: %w", err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsVideo(entry.Name()) {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}

	return videos, nil
}
