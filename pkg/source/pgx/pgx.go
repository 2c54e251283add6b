package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	pgxv5 "github.com/jackc/pgx/v5"
)

const selectRecordsSQL = `SELECT id, fields, created_at FROM records WHERE table_name = $1 ORDER BY position, id`

type pgxIConn interface {
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
}

// MirrorSource reads records from a Postgres mirror of the record store:
//
//	CREATE TABLE records (
//	    table_name text        NOT NULL,
//	    id         text        NOT NULL,
//	    position   integer     NOT NULL DEFAULT 0,
//	    fields     jsonb       NOT NULL,
//	    created_at timestamptz,
//	    PRIMARY KEY (table_name, id)
//	);
//
// Rows come back in mirror order, which keeps slug collision resolution
// stable between loads.
type MirrorSource struct {
	conn   pgxIConn
	tables map[source.Table]string
}

// NewMirrorSource creates a MirrorSource on an existing connection or pool.
// tables optionally renames the table_name values used for each table.
func NewMirrorSource(conn pgxIConn, tables map[source.Table]string) *MirrorSource {
	names := make(map[source.Table]string, len(tables))
	for k, v := range tables {
		names[k] = v
	}
	return &MirrorSource{conn: conn, tables: names}
}

// FetchTable selects every mirrored record of table.
func (m *MirrorSource) FetchTable(ctx context.Context, table source.Table) ([]source.Record, error) {
	name := string(table)
	if override, ok := m.tables[table]; ok && override != "" {
		name = override
	}

	rows, err := m.conn.Query(ctx, selectRecordsSQL, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror table %s: %w", name, err)
	}
	defer rows.Close()

	records := make([]source.Record, 0)
	for rows.Next() {
		var (
			id        string
			raw       []byte
			createdAt *time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mirror row: %w", err)
		}

		fields := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("failed to decode fields of %s/%s: %w", name, id, err)
			}
		}

		r := source.Record{ID: id, Fields: fields}
		if createdAt != nil {
			r.CreatedTime = createdAt.UTC().Format(time.RFC3339)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mirror table %s: %w", name, err)
	}

	return records, nil
}
