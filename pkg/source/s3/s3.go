package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves records from a snapshot object stored in an S3 bucket.
// This is how server instances read what the snapshot worker exported.
//
// The object is downloaded once and cached until Invalidate is called.
type S3Source struct {
	bucket string
	key    string
	format source.Format
	client objectGetter

	cache   *source.Snapshot
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3SourceParams defines the configuration for NewS3Source.
//
// Endpoint allows overriding the S3 endpoint (useful for S3-compatible
// storage like MinIO). Key is the object key of the snapshot; its extension
// selects JSON or YAML decoding.
type NewS3SourceParams struct {
	Bucket    string
	Key       string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Source creates an S3Source with its own client using static
// credentials.
func NewS3Source(ctx context.Context, params NewS3SourceParams) (*S3Source, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return NewS3SourceWithClient(params.Bucket, params.Key, client), nil
}

// NewS3SourceWithClient creates an S3Source reusing a preconfigured client.
func NewS3SourceWithClient(bucket string, key string, client *s3.Client) *S3Source {
	return newS3Source(bucket, key, client)
}

func newS3Source(bucket string, key string, client objectGetter) *S3Source {
	return &S3Source{
		bucket: bucket,
		key:    key,
		format: source.FormatFromPath(key),
		client: client,
	}
}

// FetchTable returns the records of table from the cached snapshot object.
func (s *S3Source) FetchTable(ctx context.Context, table source.Table) ([]source.Record, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.FetchTable(ctx, table)
}

// Invalidate drops the cached snapshot so the next fetch downloads the
// object again.
func (s *S3Source) Invalidate() {
	s.cacheMu.Lock()
	s.cache = nil
	s.cacheMu.Unlock()
}

func (s *S3Source) snapshot(ctx context.Context) (*source.Snapshot, error) {
	s.cacheMu.RLock()
	if s.cache != nil {
		cached := s.cache
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	result, err, _ := s.group.Do(s.bucket+"/"+s.key, func() (any, error) {
		s.cacheMu.RLock()
		if s.cache != nil {
			cached := s.cache
			s.cacheMu.RUnlock()
			return cached, nil
		}
		s.cacheMu.RUnlock()

		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot from S3: %w", err)
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, fmt.Errorf("failed to read snapshot contents: %w", err)
		}

		snap, err := source.DecodeSnapshot(buf.Bytes(), s.format)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		s.cache = snap
		s.cacheMu.Unlock()

		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*source.Snapshot), nil
}
