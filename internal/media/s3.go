package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// S3Source reads payloads from S3 or an S3-compatible store. A non-empty
// Endpoint switches to path-style addressing for MinIO and friends.
type S3Source struct {
	Region   string
	Endpoint string

	once   sync.Once
	client *s3.Client
	err    error
}

func (s *S3Source) s3Client(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.Region))
		if err != nil {
			s.err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}

		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if s.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.Endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return s.client, s.err
}

func (s *S3Source) Open(ctx context.Context, location string) (*Payload, error) {
	bucket, key, err := splitBucketPath(location, s3Scheme)
	if err != nil {
		return nil, err
	}
	if !IsVideo(key) {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, location)
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}

	size := aws.ToInt64(out.ContentLength)
	if size == 0 {
		_ = out.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, location)
	}

	contentType := aws.ToString(out.ContentType)
	if !isVideoType(contentType) {
		contentType, _ = ContentTypeFor(key)
	}

	return NewPayload(path.Base(key), contentType, size, out.Body), nil
}

func (s *S3Source) List(ctx context.Context, location string) ([]string, error) {
	bucket, prefix, err := splitBucketPath(location, s3Scheme)
	if err != nil {
		return nil, err
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	var videos []string
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if IsVideo(key) {
				videos = append(videos, s3Scheme+bucket+"/"+key)
			}
		}
	}

	return videos, nil
}

func isVideoType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}
