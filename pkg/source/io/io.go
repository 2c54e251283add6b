package io

import (
	"context"
	"os"
	"sync"

	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"golang.org/x/sync/singleflight"
)

// FileSource serves records from a snapshot file on the local filesystem.
// The file is read once and cached until Invalidate is called, so a full
// graph load touches the disk a single time.
type FileSource struct {
	path   string
	format source.Format

	cache   *source.Snapshot
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFileSource creates a source for the snapshot at path. The format is
// derived from the file extension.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:   path,
		format: source.FormatFromPath(path),
	}
}

// FetchTable returns the records of table from the cached snapshot.
func (s *FileSource) FetchTable(ctx context.Context, table source.Table) ([]source.Record, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.FetchTable(ctx, table)
}

// Invalidate drops the cached snapshot; the next fetch rereads the file.
func (s *FileSource) Invalidate() {
	s.cacheMu.Lock()
	s.cache = nil
	s.cacheMu.Unlock()
}

// Write stores snap at the source path, replacing the previous file, and
// invalidates the cache.
func (s *FileSource) Write(snap *source.Snapshot) error {
	data, err := snap.Encode(s.format)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *FileSource) snapshot() (*source.Snapshot, error) {
	s.cacheMu.RLock()
	if s.cache != nil {
		cached := s.cache
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	result, err, _ := s.group.Do(s.path, func() (any, error) {
		s.cacheMu.RLock()
		if s.cache != nil {
			cached := s.cache
			s.cacheMu.RUnlock()
			return cached, nil
		}
		s.cacheMu.RUnlock()

		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, err
		}
		snap, err := source.DecodeSnapshot(data, s.format)
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
