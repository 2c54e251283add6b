// Package store holds the graph currently served. Reloads build a complete
// new graph and swap it in at once; readers never see a partial graph.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/pathway"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned before the first successful load.
var ErrNotLoaded = errors.New("graph not loaded")

// GraphLoader builds a graph from a record source. graph.GraphClient
// implements it.
type GraphLoader interface {
	Load(ctx context.Context, src source.RecordSource) (*graph.Graph, error)
}

// GraphStorage is the read and reload surface of a graph store.
type GraphStorage interface {
	Current() (*graph.Graph, error)
	Explorer() (*pathway.Explorer, error)
	Reload(ctx context.Context) (*graph.Graph, error)
}

type snapshot struct {
	graph    *graph.Graph
	explorer *pathway.Explorer
}

// GraphStore keeps the latest successfully loaded graph. Concurrent reloads
// share one load. A failed reload keeps the previous graph.
type GraphStore struct {
	loader GraphLoader
	src    source.RecordSource

	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

// NewGraphStoreParams defines the configuration for NewGraphStore.
type NewGraphStoreParams struct {
	Loader GraphLoader
	Source source.RecordSource
}

func NewGraphStore(params NewGraphStoreParams) (*GraphStore, error) {
	if params.Loader == nil {
		return nil, errors.New("graph loader is required")
	}
	if params.Source == nil {
		return nil, errors.New("record source is required")
	}
	return &GraphStore{loader: params.Loader, src: params.Source}, nil
}

// Current returns the graph being served.
func (s *GraphStore) Current() (*graph.Graph, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.graph, nil
}

// Explorer returns the pathway explorer over the current graph.
func (s *GraphStore) Explorer() (*pathway.Explorer, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.explorer, nil
}

// Reload rereads the record source and swaps in the new graph. Caching
// sources are invalidated first so the reload sees fresh data. The shared
// load is not cancelled with ctx; a caller whose ctx ends stops waiting
// while callers that joined it still get the result.
func (s *GraphStore) Reload(ctx context.Context) (*graph.Graph, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("reload", func() (any, error) {
		if inv, ok := s.src.(source.Invalidator); ok {
			inv.Invalidate()
		}

		g, err := s.loader.Load(loadCtx, s.src)
		if err != nil {
			reloads.WithLabelValues("error").Inc()
			if prev := s.current.Load(); prev != nil {
				logger.Error("[Store] Reload failed, keeping previous graph", "loaded_at", prev.graph.LoadedAt, "err", err)
			}
			return nil, fmt.Errorf("failed to reload graph: %w", err)
		}

		s.current.Store(&snapshot{graph: g, explorer: pathway.NewExplorer(g)})
		reloads.WithLabelValues("success").Inc()
		observe(g)
		return g, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("[Store] Joined running reload")
		}
		return res.Val.(*graph.Graph), nil
	}
}

// Set serves g directly, bypassing the record source.
func (s *GraphStore) Set(g *graph.Graph) {
	s.current.Store(&snapshot{graph: g, explorer: pathway.NewExplorer(g)})
	observe(g)
}

func observe(g *graph.Graph) {
	stats := g.Stats()
	entities.WithLabelValues(string(common.KindOrganization)).Set(float64(stats.Organizations))
	entities.WithLabelValues(string(common.KindWorldview)).Set(float64(stats.Worldviews))
	entities.WithLabelValues(string(common.KindOutcome)).Set(float64(stats.Outcomes))
	entities.WithLabelValues(string(common.KindProblemCategory)).Set(float64(stats.ProblemCategories))
	entities.WithLabelValues(string(common.KindProblem)).Set(float64(stats.Problems))
	entities.WithLabelValues(string(common.KindProject)).Set(float64(stats.Projects))

	loadedAt := g.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}
	lastLoad.Set(float64(loadedAt.Unix()))
}
