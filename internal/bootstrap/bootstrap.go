// Package bootstrap wires record sources, the graph client and the graph
// store from environment variables. It is shared by every binary.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/internal/storage"
	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger/console"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source/airtable"
	sourceio "github.com/OFFIS-RIT/pathways/backend/pkg/source/io"
	sourcepgx "github.com/OFFIS-RIT/pathways/backend/pkg/source/pgx"
	sources3 "github.com/OFFIS-RIT/pathways/backend/pkg/source/s3"
	"github.com/OFFIS-RIT/pathways/backend/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SourceAirtable = "airtable"
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// InitLogger loads the environment and sets up the console logger.
func InitLogger(prefix string) {
	util.LoadEnv()
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Format: util.GetEnvString("LOG_FORMAT", "text"),
		Prefix: prefix,
	}))
}

// NewAirtableClient creates the client of the hosted record store.
func NewAirtableClient() (*airtable.Client, error) {
	tables := make(map[source.Table]string)
	for _, t := range source.AllTables {
		key := "AIRTABLE_TABLE_" + strings.ToUpper(strings.ReplaceAll(string(t), " ", "_"))
		if name := util.GetEnv(key); name != "" {
			tables[t] = name
		}
	}

	return airtable.NewClient(airtable.NewClientParams{
		BaseURL:           util.GetEnv("AIRTABLE_URL"),
		BaseID:            util.GetEnv("AIRTABLE_BASE_ID"),
		APIKey:            util.GetEnv("AIRTABLE_API_KEY"),
		View:              util.GetEnv("AIRTABLE_VIEW"),
		RequestsPerSecond: util.GetEnvNumeric("AIRTABLE_RPS", 5),
		MaxRetries:        util.GetEnvInt("FETCH_RETRIES", 4),
		TableNames:        tables,
	})
}

// NewRecordSource creates the source selected by SOURCE. The returned
// function releases its resources.
func NewRecordSource(ctx context.Context) (source.RecordSource, func(), error) {
	noop := func() {}
	kind := strings.ToLower(util.GetEnvString("SOURCE", SourceAirtable))

	switch kind {
	case SourceAirtable:
		client, err := NewAirtableClient()
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case SourceFile:
		path := util.GetEnv("SNAPSHOT_PATH")
		if path == "" {
			return nil, noop, fmt.Errorf("SNAPSHOT_PATH is required for source %q", kind)
		}
		return sourceio.NewFileSource(path), noop, nil

	case SourceS3:
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			return nil, noop, err
		}
		return sources3.NewS3SourceWithClient(storage.Bucket(), storage.SnapshotKey(), client), noop, nil

	case SourcePostgres:
		pool, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		return sourcepgx.NewMirrorSource(pool, nil), pool.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown source %q", kind)
}

// NewGraphClient creates a graph client from FETCH_PARALLEL, FETCH_RETRIES,
// REFERENCE_MODE and SLUG_COLLISIONS.
func NewGraphClient() (*graph.GraphClient, error) {
	return graph.NewGraphClient(graph.NewGraphClientParams{
		ParallelFetches: util.GetEnvInt("FETCH_PARALLEL", len(source.AllTables)),
		MaxRetries:      util.GetEnvInt("FETCH_RETRIES", 3),
		ResolutionMode:  graph.ParseResolutionMode(util.GetEnvString("REFERENCE_MODE", "lenient")),
		CollisionMode:   slug.ParseCollisionMode(util.GetEnvString("SLUG_COLLISIONS", "overwrite")),
	})
}

// NewGraphStore creates a store over the configured source. The returned
// function releases the source.
func NewGraphStore(ctx context.Context) (*store.GraphStore, func(), error) {
	src, closeSource, err := NewRecordSource(ctx)
	if err != nil {
		return nil, func() {}, err
	}
	client, err := NewGraphClient()
	if err != nil {
		closeSource()
		return nil, func() {}, err
	}
	s, err := store.NewGraphStore(store.NewGraphStoreParams{Loader: client, Source: src})
	if err != nil {
		closeSource()
		return nil, func() {}, err
	}
	return s, closeSource, nil
}
