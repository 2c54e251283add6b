package aggregate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
)

var ErrUnknownView = errors.New("unknown view")

var (
	OrganizationRoles      = Multi(func(o common.Organization) []string { return o.Roles })
	OrganizationEntityType = Single(func(o common.Organization) string { return o.EntityType })
	OrganizationCountries  = Multi(func(o common.Organization) []string { return o.Countries })
	OrganizationStates     = Multi(func(o common.Organization) []string { return o.States })
	OrganizationCity       = Single(func(o common.Organization) string { return o.City })
	ProjectStatus          = Single(func(p common.Project) string { return p.Status })
)

// ProblemCategory groups problems by the name of their category.
func ProblemCategory(g *graph.Graph) KeyFunc[common.Problem] {
	return Single(func(p common.Problem) string {
		c, ok := g.ProblemCategories.Get(p.Category)
		if !ok {
			return ""
		}
		return c.Name
	})
}

// ProjectCategories groups projects by the categories of the problems they
// address.
func ProjectCategories(g *graph.Graph) KeyFunc[common.Project] {
	byProblem := ProblemCategory(g)
	return Multi(func(p common.Project) []string {
		out := make([]string, 0, len(p.AddressedProblems))
		for _, s := range p.AddressedProblems {
			problem, ok := g.Problems.Get(s)
			if !ok {
				continue
			}
			out = append(out, byProblem(problem)...)
		}
		return out
	})
}

// OutcomeWorldviews groups outcomes by the names of the worldviews they are
// relevant to at one of levels. No levels means any level.
func OutcomeWorldviews(g *graph.Graph, levels ...common.RelevanceLevel) KeyFunc[common.Outcome] {
	return Multi(func(o common.Outcome) []string {
		out := make([]string, 0, len(o.Relevance))
		for _, wv := range g.Worldviews.All() {
			level, ok := o.Relevance[wv.Slug]
			if !ok {
				continue
			}
			if len(levels) > 0 && !slices.Contains(levels, level) {
				continue
			}
			out = append(out, wv.Name)
		}
		return out
	})
}

// Summary is a group with its members reduced to slugs.
type Summary struct {
	Key       string   `json:"key"`
	Count     int      `json:"count"`
	Intensity float64  `json:"intensity"`
	Members   []string `json:"members"`
}

// Views lists the names accepted by GroupView.
var Views = []string{
	"organizations-by-role",
	"organizations-by-type",
	"organizations-by-country",
	"organizations-by-state",
	"organizations-by-city",
	"projects-by-status",
	"projects-by-category",
	"problems-by-category",
	"outcomes-by-worldview",
}

// GroupView computes one of the named Views over g, keeping the top groups
// when top > 0.
func GroupView(g *graph.Graph, view string, top int, opts ...Option) ([]Summary, error) {
	orgSlug := func(o common.Organization) string { return o.Slug }
	projectSlug := func(p common.Project) string { return p.Slug }

	switch view {
	case "organizations-by-role":
		return summarize(TopN(Group(g.Organizations.All(), OrganizationRoles, nil, opts...), top), orgSlug), nil
	case "organizations-by-type":
		return summarize(TopN(Group(g.Organizations.All(), OrganizationEntityType, nil, opts...), top), orgSlug), nil
	case "organizations-by-country":
		return summarize(TopN(Group(g.Organizations.All(), OrganizationCountries, nil, opts...), top), orgSlug), nil
	case "organizations-by-state":
		return summarize(TopN(Group(g.Organizations.All(), OrganizationStates, nil, opts...), top), orgSlug), nil
	case "organizations-by-city":
		return summarize(TopN(Group(g.Organizations.All(), OrganizationCity, nil, opts...), top), orgSlug), nil
	case "projects-by-status":
		return summarize(TopN(Group(g.Projects.All(), ProjectStatus, nil, opts...), top), projectSlug), nil
	case "projects-by-category":
		return summarize(TopN(Group(g.Projects.All(), ProjectCategories(g), nil, opts...), top), projectSlug), nil
	case "problems-by-category":
		return summarize(TopN(Group(g.Problems.All(), ProblemCategory(g), nil, opts...), top), func(p common.Problem) string { return p.Slug }), nil
	case "outcomes-by-worldview":
		return summarize(TopN(Group(g.Outcomes.All(), OutcomeWorldviews(g), nil, opts...), top), func(o common.Outcome) string { return o.Slug }), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
}

// RoleByCountry cross-tabulates organization roles against countries.
func RoleByCountry(g *graph.Graph, topRows int, topCols int, opts ...Option) Heatmap {
	return CrossTab(g.Organizations.All(), OrganizationRoles, OrganizationCountries, topRows, topCols, opts...)
}

func summarize[T any](groups []Result[T], slugOf func(T) string) []Summary {
	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			members = append(members, slugOf(m))
		}
		out = append(out, Summary{
			Key:       g.Key,
			Count:     g.Count,
			Intensity: g.Intensity,
			Members:   members,
		})
	}
	return out
}
