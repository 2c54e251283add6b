package storage

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	keys  []string
	types []string
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, *params.Key)
	f.types = append(f.types, *params.ContentType)
	body, _ := io.ReadAll(params.Body)
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func testSnapshot() *source.Snapshot {
	return &source.Snapshot{
		FetchedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		Tables: map[source.Table][]source.Record{
			source.TableWorldviews: {{ID: "rec1", Fields: map[string]any{"Name": "Open Science"}}},
		},
	}
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	tests := []struct {
		key  string
		want string
	}{
		{"snapshots/current.json", "snapshots/archive/20240501T060000Z-current.json"},
		{"current.yaml", "archive/20240501T060000Z-current.yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if got := ArchiveKey(tc.key, at); got != tc.want {
				t.Fatalf("ArchiveKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPutSnapshot(t *testing.T) {
	f := &fakePutter{}
	if err := PutSnapshot(context.Background(), f, "bucket", "snapshots/current.yaml", testSnapshot(), true); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	wantKeys := []string{"snapshots/archive/20240501T080000Z-current.yaml", "snapshots/current.yaml"}
	if !reflect.DeepEqual(f.keys, wantKeys) {
		t.Fatalf("unexpected keys %v", f.keys)
	}
	if f.types[1] != "application/yaml" {
		t.Fatalf("unexpected content type %q", f.types[1])
	}

	snap, err := source.DecodeSnapshot(f.body, source.FormatYAML)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if got := snap.Tables[source.TableWorldviews][0].Text("Name"); got != "Open Science" {
		t.Fatalf("unexpected round trip value %q", got)
	}
}

func TestPutSnapshotError(t *testing.T) {
	f := &fakePutter{err: errors.New("denied")}
	if err := PutSnapshot(context.Background(), f, "bucket", DefaultSnapshotKey, testSnapshot(), false); err == nil {
		t.Fatal("expected error")
	}
}
