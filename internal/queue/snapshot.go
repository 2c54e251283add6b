package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/storage"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var validate = validator.New()

// SnapshotJobMsg asks the worker to export the upstream record store.
type SnapshotJobMsg struct {
	Message       string    `json:"message"`
	CorrelationID string    `json:"correlation_id" validate:"required"`
	RequestedBy   string    `json:"requested_by"`
	RequestedAt   time.Time `json:"requested_at"`
	Archive       bool      `json:"archive"`
}

// GraphReloadMsg is broadcast after a new snapshot has been stored.
type GraphReloadMsg struct {
	CorrelationID string      `json:"correlation_id"`
	Bucket        string      `json:"bucket"`
	Key           string      `json:"key" validate:"required"`
	FetchedAt     time.Time   `json:"fetched_at"`
	Stats         graph.Stats `json:"stats"`
}

func NewSnapshotJob(message string, requestedBy string, archive bool) (SnapshotJobMsg, error) {
	id, err := gonanoid.New()
	if err != nil {
		return SnapshotJobMsg{}, fmt.Errorf("failed to generate correlation id: %w", err)
	}
	return SnapshotJobMsg{
		Message:       message,
		CorrelationID: id,
		RequestedBy:   requestedBy,
		RequestedAt:   time.Now().UTC(),
		Archive:       archive,
	}, nil
}

// EnqueueSnapshotJob publishes job to the snapshot queue.
func EnqueueSnapshotJob(ch Channel, job SnapshotJobMsg) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, SnapshotQueue, data)
}

func ParseSnapshotJob(body []byte) (SnapshotJobMsg, error) {
	var job SnapshotJobMsg
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("invalid snapshot job: %w", err)
	}
	if err := validate.Struct(job); err != nil {
		return job, fmt.Errorf("invalid snapshot job: %w", err)
	}
	return job, nil
}

func ParseGraphReload(body []byte) (GraphReloadMsg, error) {
	var msg GraphReloadMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("invalid reload message: %w", err)
	}
	if err := validate.Struct(msg); err != nil {
		return msg, fmt.Errorf("invalid reload message: %w", err)
	}
	return msg, nil
}

// GraphBuilder validates exported tables by building a graph from them.
type GraphBuilder interface {
	Build(tables map[source.Table][]source.Record) (*graph.Graph, error)
}

type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Locker serializes exports between workers. leaselock.Client implements it.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// SnapshotProcessor handles messages of the snapshot queue. Locker is
// optional; without it concurrent workers may export at the same time.
type SnapshotProcessor struct {
	Upstream source.RecordSource
	Builder  GraphBuilder
	Storage  ObjectPutter
	Bucket   string
	Key      string
	Parallel int
	Channel  Channel
	Locker   Locker
}

// Process exports the upstream store, rejects snapshots that do not build,
// uploads the snapshot and announces it on the reload topic.
func (p *SnapshotProcessor) Process(ctx context.Context, body []byte) error {
	if p.Upstream == nil || p.Builder == nil || p.Storage == nil {
		return errors.New("snapshot processor is not configured")
	}

	job, err := ParseSnapshotJob(body)
	if err != nil {
		return err
	}

	key := p.Key
	if key == "" {
		key = storage.DefaultSnapshotKey
	}

	if p.Locker == nil {
		return p.export(ctx, job, key)
	}
	return p.Locker.WithLease(ctx, "snapshot:"+key, leaselock.Options{TokenPrefix: "worker-"}, func(ctx context.Context) error {
		return p.export(ctx, job, key)
	})
}

func (p *SnapshotProcessor) export(ctx context.Context, job SnapshotJobMsg, key string) error {
	logger.Info("[Queue] Exporting snapshot", "correlation_id", job.CorrelationID, "requested_by", job.RequestedBy)

	snap, err := source.Export(ctx, p.Upstream, p.Parallel)
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}

	g, err := p.Builder.Build(snap.Tables)
	if err != nil {
		return fmt.Errorf("snapshot does not build: %w", err)
	}
	g.LoadedAt = snap.FetchedAt
	stats := g.Stats()
	if !g.Report.Clean() {
		logger.Warn("[Queue] Snapshot has data quality findings",
			"correlation_id", job.CorrelationID,
			"dropped", stats.Dropped,
			"collisions", stats.Collisions,
			"issues", stats.Issues,
		)
	}

	if err := storage.PutSnapshot(ctx, p.Storage, p.Bucket, key, snap, job.Archive); err != nil {
		return err
	}
	logger.Info("[Queue] Stored snapshot", "correlation_id", job.CorrelationID, "key", key, "projects", stats.Projects)

	if p.Channel == nil {
		return nil
	}
	data, err := json.Marshal(GraphReloadMsg{
		CorrelationID: job.CorrelationID,
		Bucket:        p.Bucket,
		Key:           key,
		FetchedAt:     snap.FetchedAt,
		Stats:         stats,
	})
	if err != nil {
		return err
	}
	if err := PublishTopic(p.Channel, ReloadTopic, data); err != nil {
		// The snapshot is stored; a lost broadcast is picked up by the next reload.
		logger.Error("[Queue] Failed to publish reload", "correlation_id", job.CorrelationID, "err", err)
	}
	return nil
}
