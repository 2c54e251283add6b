package source

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a snapshot file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the snapshot format from a file extension. Anything
// that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Snapshot holds every table of the record store as read at one instant.
// A Snapshot is itself a RecordSource, so a stored snapshot can stand in
// for the live store.
type Snapshot struct {
	FetchedAt time.Time          `json:"fetched_at" yaml:"fetched_at"`
	Tables    map[Table][]Record `json:"tables" yaml:"tables"`
}

// FetchTable returns a copy of the records of table.
func (s *Snapshot) FetchTable(ctx context.Context, table Table) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, ok := s.Tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

// Encode serializes the snapshot in the given format.
func (s *Snapshot) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON, "":
		return json.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// DecodeSnapshot parses a snapshot. Tables missing from the data decode as
// empty tables so that a partial snapshot still loads.
func DecodeSnapshot(data []byte, format Format) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, s)
	case FormatJSON, "":
		err = json.Unmarshal(data, s)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Tables == nil {
		s.Tables = make(map[Table][]Record)
	}
	for _, table := range AllTables {
		if _, ok := s.Tables[table]; !ok {
			s.Tables[table] = []Record{}
		}
	}
	for table, records := range s.Tables {
		for i := range records {
			records[i].Fields = normalizeFields(records[i].Fields)
		}
		s.Tables[table] = records
	}
	return s, nil
}

// Export reads every table of src concurrently into a snapshot. parallel
// limits the number of tables fetched at once; values <= 0 fetch all tables
// in parallel.
func Export(ctx context.Context, src RecordSource, parallel int) (*Snapshot, error) {
	snap := &Snapshot{
		FetchedAt: time.Now().UTC(),
		Tables:    make(map[Table][]Record, len(AllTables)),
	}
	mu := sync.Mutex{}

	eg, gCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for _, table := range AllTables {
		t := table
		eg.Go(func() error {
			records, err := src.FetchTable(gCtx, t)
			if err != nil {
				return fmt.Errorf("failed to fetch table %s: %w", t, err)
			}
			mu.Lock()
			snap.Tables[t] = records
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// normalizeFields converts YAML's map[interface{}]interface{} leftovers and
// nested lists into the JSON-shaped values the accessors expect.
func normalizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	for k, v := range fields {
		fields[k] = normalizeValue(v)
	}
	return fields
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case int:
		return float64(val)
	default:
		return val
	}
}
