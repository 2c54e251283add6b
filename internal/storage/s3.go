package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultSnapshotKey is the object key served snapshots are written to.
const DefaultSnapshotKey = "snapshots/current.json"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client creates a client from the AWS_* environment variables.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// Bucket returns the configured snapshot bucket.
func Bucket() string {
	return util.GetEnv("AWS_BUCKET")
}

// SnapshotKey returns the configured object key of the served snapshot.
func SnapshotKey() string {
	return util.GetEnvString("SNAPSHOT_KEY", DefaultSnapshotKey)
}

// ArchiveKey derives the key of a dated copy of the snapshot at key, for
// instance snapshots/archive/20240501T080000Z-current.json.
func ArchiveKey(key string, fetchedAt time.Time) string {
	dir, name := path.Split(key)
	return path.Join(dir, "archive", fetchedAt.UTC().Format("20060102T150405Z")+"-"+name)
}

// PutSnapshot uploads snap to key, encoded by the key's extension. With
// archive set, a dated copy is written next to it first.
func PutSnapshot(ctx context.Context, client objectPutter, bucket string, key string, snap *source.Snapshot, archive bool) error {
	format := source.FormatFromPath(key)
	data, err := snap.Encode(format)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	keys := []string{key}
	if archive {
		keys = []string{ArchiveKey(key, snap.FetchedAt), key}
	}

	for _, k := range keys {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(k),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(format)),
		})
		if err != nil {
			return fmt.Errorf("failed to upload snapshot to %s: %w", k, err)
		}
	}
	return nil
}

func contentType(format source.Format) string {
	if strings.EqualFold(string(format), string(source.FormatYAML)) {
		return "application/yaml"
	}
	return "application/json"
}
