package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"golang.org/x/sync/errgroup"
)

// GraphClient loads the entity graph from a record source. It fetches the
// tables concurrently and builds them one after another in dependency order.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	parallelFetches int
	maxRetries      int
	resolution      ResolutionMode
	collisions      slug.CollisionMode
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ParallelFetches controls how many tables are fetched at the same time.
// MaxRetries is the number of attempts per table fetch.
// ResolutionMode and CollisionMode select the policies for dangling
// references and slug collisions.
type NewGraphClientParams struct {
	ParallelFetches int
	MaxRetries      int
	ResolutionMode  ResolutionMode
	CollisionMode   slug.CollisionMode
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		ParallelFetches: 4,
//		ResolutionMode:  graph.ResolveLenient,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	g, err := client.Load(ctx, src)
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	parallel := params.ParallelFetches
	if parallel <= 0 {
		parallel = len(source.AllTables)
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &GraphClient{
		parallelFetches: parallel,
		maxRetries:      maxRetries,
		resolution:      params.ResolutionMode,
		collisions:      params.CollisionMode,
	}, nil
}

// Load fetches every table from src and builds a fresh graph. A failed
// fetch fails the whole load; no partial graph is returned.
func (g *GraphClient) Load(ctx context.Context, src source.RecordSource) (*Graph, error) {
	start := time.Now()
	logger.Info("[Graph] Loading", "tables", len(source.AllTables))

	tables, err := g.fetchAll(ctx, src)
	if err != nil {
		loadDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	graph, err := g.Build(tables)
	if err != nil {
		loadDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	loadDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	stats := graph.Stats()
	logger.Info("[Graph] Loaded",
		"organizations", stats.Organizations,
		"worldviews", stats.Worldviews,
		"outcomes", stats.Outcomes,
		"problems", stats.Problems,
		"projects", stats.Projects,
		"dropped", stats.Dropped,
		"collisions", stats.Collisions,
		"duration", time.Since(start),
	)
	return graph, nil
}

func (g *GraphClient) fetchAll(ctx context.Context, src source.RecordSource) (map[source.Table][]source.Record, error) {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelFetches)
	mutex := sync.Mutex{}
	tables := make(map[source.Table][]source.Record, len(source.AllTables))

	for _, table := range source.AllTables {
		t := table
		eg.Go(func() error {
			attempt := 0
			records, err := util.RetryWithContext(gCtx, g.maxRetries, func(ctx context.Context) ([]source.Record, error) {
				attempt++
				if attempt > 1 {
					fetchRetries.WithLabelValues(string(t)).Inc()
					logger.Warn("[Graph] Retrying fetch", "table", t, "attempt", attempt)
				}
				return src.FetchTable(ctx, t)
			})
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", t, err)
			}

			mutex.Lock()
			defer mutex.Unlock()
			tables[t] = records
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Build runs the builders over already fetched tables in dependency order.
// Missing tables are treated as empty.
func (g *GraphClient) Build(tables map[source.Table][]source.Record) (*Graph, error) {
	b := NewBuilder(g.collisions, g.resolution)
	graph := &Graph{IDMaps: make(map[source.Table]slug.IDMap, len(source.AllTables))}

	orgs, orgIDs, err := b.Organizations(tables[source.TableOrganizations])
	if err != nil {
		return nil, fmt.Errorf("failed to build organizations: %w", err)
	}
	graph.Organizations = orgs
	graph.IDMaps[source.TableOrganizations] = orgIDs

	worldviews, worldviewIDs, err := b.Worldviews(tables[source.TableWorldviews])
	if err != nil {
		return nil, fmt.Errorf("failed to build worldviews: %w", err)
	}
	graph.Worldviews = worldviews
	graph.IDMaps[source.TableWorldviews] = worldviewIDs

	outcomes, outcomeIDs, err := b.Outcomes(tables[source.TableOutcomes], tables[source.TableOutcomeWorldviews], worldviewIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build outcomes: %w", err)
	}
	graph.Outcomes = outcomes
	graph.IDMaps[source.TableOutcomes] = outcomeIDs

	categories, categoryIDs, err := b.ProblemCategories(tables[source.TableProblemCategories])
	if err != nil {
		return nil, fmt.Errorf("failed to build problem categories: %w", err)
	}
	graph.ProblemCategories = categories
	graph.IDMaps[source.TableProblemCategories] = categoryIDs

	problems, problemIDs, err := b.Problems(tables[source.TableProblems], categoryIDs, outcomeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build problems: %w", err)
	}
	graph.Problems = problems
	graph.IDMaps[source.TableProblems] = problemIDs

	projects, projectIDs, err := b.Projects(tables[source.TableProjects], problemIDs, orgIDs, orgs)
	if err != nil {
		return nil, fmt.Errorf("failed to build projects: %w", err)
	}
	graph.Projects = projects
	graph.IDMaps[source.TableProjects] = projectIDs

	graph.Report = b.Report()
	graph.LoadedAt = time.Now().UTC()
	return graph, nil
}
