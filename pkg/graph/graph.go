package graph

import (
	"slices"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

// Graph is one immutable build of the theory-of-change graph. All
// relationship fields hold slugs of entities present in the graph, with the
// exception of Project.Organizations which holds organization names.
type Graph struct {
	Organizations     *Collection[common.Organization]
	Worldviews        *Collection[common.Worldview]
	Outcomes          *Collection[common.Outcome]
	ProblemCategories *Collection[common.ProblemCategory]
	Problems          *Collection[common.Problem]
	Projects          *Collection[common.Project]

	// IDMaps maps the opaque record ids of every table to slugs.
	IDMaps   map[source.Table]slug.IDMap
	Report   Report
	LoadedAt time.Time
}

// Stats summarizes a graph.
type Stats struct {
	Organizations     int       `json:"organizations"`
	Worldviews        int       `json:"worldviews"`
	Outcomes          int       `json:"outcomes"`
	ProblemCategories int       `json:"problem_categories"`
	Problems          int       `json:"problems"`
	Projects          int       `json:"projects"`
	Dropped           int       `json:"dropped_references"`
	Collisions        int       `json:"slug_collisions"`
	Issues            int       `json:"schema_issues"`
	LoadedAt          time.Time `json:"loaded_at"`
}

func (g *Graph) Stats() Stats {
	return Stats{
		Organizations:     g.Organizations.Len(),
		Worldviews:        g.Worldviews.Len(),
		Outcomes:          g.Outcomes.Len(),
		ProblemCategories: g.ProblemCategories.Len(),
		Problems:          g.Problems.Len(),
		Projects:          g.Projects.Len(),
		Dropped:           len(g.Report.Dropped),
		Collisions:        g.Report.CollisionCount(),
		Issues:            len(g.Report.Issues),
		LoadedAt:          g.LoadedAt,
	}
}

// Entity looks up a single entity of any kind, for detail views.
func (g *Graph) Entity(kind common.EntityKind, s string) (any, bool) {
	switch kind {
	case common.KindOrganization:
		return g.Organizations.Get(s)
	case common.KindWorldview:
		return g.Worldviews.Get(s)
	case common.KindOutcome:
		return g.Outcomes.Get(s)
	case common.KindProblemCategory:
		return g.ProblemCategories.Get(s)
	case common.KindProblem:
		return g.Problems.Get(s)
	case common.KindProject:
		return g.Projects.Get(s)
	}
	return nil, false
}

// ProblemsAffecting returns the problems listing outcome among their
// affected outcomes.
func (g *Graph) ProblemsAffecting(outcome string) []common.Problem {
	return g.Problems.Filter(func(p common.Problem) bool {
		return slices.Contains(p.AffectedOutcomes, outcome)
	})
}

// ProjectsAddressing returns the projects addressing problem.
func (g *Graph) ProjectsAddressing(problem string) []common.Project {
	return g.Projects.Filter(func(p common.Project) bool {
		return slices.Contains(p.AddressedProblems, problem)
	})
}

func (g *Graph) ProblemsInCategory(category string) []common.Problem {
	return g.Problems.Filter(func(p common.Problem) bool {
		return p.Category == category
	})
}

// OutcomesForWorldview returns the outcomes relevant to worldview at one of
// levels. No levels means any level.
func (g *Graph) OutcomesForWorldview(worldview string, levels ...common.RelevanceLevel) []common.Outcome {
	return g.Outcomes.Filter(func(o common.Outcome) bool {
		level, ok := o.Relevance[worldview]
		if !ok {
			return false
		}
		return len(levels) == 0 || slices.Contains(levels, level)
	})
}

// ProjectsForOrganization returns the projects naming the organization
// held by slug org.
func (g *Graph) ProjectsForOrganization(org string) []common.Project {
	o, ok := g.Organizations.Get(org)
	if !ok {
		return []common.Project{}
	}
	name := o.Name
	if name == "" {
		name = o.Slug
	}
	return g.Projects.Filter(func(p common.Project) bool {
		return slices.Contains(p.Organizations, name)
	})
}
