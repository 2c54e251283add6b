// Package graphtest provides a small record store fixture for tests of
// packages that consume the entity graph.
//
// The fixture holds three organizations, three worldviews, three outcomes,
// two problem categories, three problems and three projects. It contains
// three dangling references (an affiliation, a relevance triple and an
// affected outcome) so that lenient builds report them.
package graphtest

import (
	"testing"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

// Slugs of the fixture entities.
const (
	OrgAcme   = "acme-foundation"
	OrgBeacon = "beacon-labs"
	OrgCivic  = "civic-voices"

	WorldviewMarket  = "market-builders"
	WorldviewScience = "open-science"
	WorldviewPatient = "patient-first"

	OutcomeFunding   = "sustainable-funding"
	OutcomeData      = "shared-data-infrastructure"
	OutcomeAwareness = "informed-public"

	CategoryFunding = "funding-gaps"
	CategoryData    = "data-access"

	ProblemGrants    = "short-term-grants"
	ProblemSilos     = "siloed-datasets"
	ProblemAwareness = "low-awareness"

	ProjectBridge  = "bridge-fund"
	ProjectCommons = "data-commons"
	ProjectOrphan  = "orphan-project"
)

// DanglingReferences is the number of references a lenient build drops.
const DanglingReferences = 3

func links(ids ...string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

// Snapshot returns a fresh copy of the fixture.
func Snapshot() *source.Snapshot {
	return &source.Snapshot{
		FetchedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		Tables: map[source.Table][]source.Record{
			source.TableOrganizations: {
				{ID: "recOrgA", Fields: map[string]any{
					"Name":                     "Acme Foundation",
					"Role":                     links("Funder", "Media"),
					"Entity Type":              "Nonprofit",
					"City":                     "Boston",
					"State":                    links("MA"),
					"Country":                  links("USA"),
					"People":                   links("Jane Doe"),
					"Affiliated Organizations": links("recOrgB"),
				}},
				{ID: "recOrgB", Fields: map[string]any{
					"Name":                     "Beacon Labs",
					"Role":                     links("Funder"),
					"Entity Type":              "Company",
					"Country":                  links("USA", "Canada"),
					"Affiliated Organizations": links("recOrgA", "recOrgMissing"),
				}},
				{ID: "recOrgC", Fields: map[string]any{
					"Name":        "Civic Voices",
					"Role":        links("Advocacy"),
					"Entity Type": "Nonprofit",
				}},
			},
			source.TableWorldviews: {
				{ID: "recWvM", Fields: map[string]any{"Name": "Market Builders", "Short Name": "Market", "Color": "#f59e0b", "Cluster": "Systems"}},
				{ID: "recWvS", Fields: map[string]any{"Name": "Open Science", "Short Name": "Science", "Color": "#3b82f6", "Cluster": "Systems"}},
				{ID: "recWvP", Fields: map[string]any{"Name": "Patient First", "Short Name": "Patient", "Color": "#10b981", "Cluster": "People", "Example Organizations": "Acme Foundation, Civic Voices"}},
			},
			source.TableOutcomes: {
				{ID: "recO1", Fields: map[string]any{"ID": "O1", "Name": "Sustainable Funding"}},
				{ID: "recO2", Fields: map[string]any{"ID": "O2", "Name": "Shared Data Infrastructure"}},
				{ID: "recO3", Fields: map[string]any{"ID": "O3", "Name": "Informed Public"}},
			},
			source.TableOutcomeWorldviews: {
				{ID: "recJ1", Fields: map[string]any{"Outcome": links("recO1"), "Worldview": links("recWvM"), "Relevance": "High"}},
				{ID: "recJ2", Fields: map[string]any{"Outcome": links("recO2"), "Worldview": links("recWvS"), "Relevance": "Medium"}},
				{ID: "recJ3", Fields: map[string]any{"Outcome": links("recO3"), "Worldview": links("recWvP"), "Relevance": "Low"}},
				{ID: "recJ4", Fields: map[string]any{"Outcome": links("recO3"), "Worldview": links("recWvS"), "Relevance": "Low"}},
				{ID: "recJ5", Fields: map[string]any{"Outcome": links("recO1"), "Worldview": links("recWvMissing"), "Relevance": "High"}},
			},
			source.TableProblemCategories: {
				{ID: "recC1", Fields: map[string]any{"Name": "Funding Gaps"}},
				{ID: "recC2", Fields: map[string]any{"Name": "Data Access"}},
			},
			source.TableProblems: {
				{ID: "recP1", Fields: map[string]any{"ID": "P1", "Name": "Short-term grants", "Category": links("recC1"), "Affected Outcomes": links("recO1", "recOMissing")}},
				{ID: "recP2", Fields: map[string]any{"ID": "P2", "Name": "Siloed datasets", "Category": links("recC2"), "Affected Outcomes": links("recO2")}},
				{ID: "recP3", Fields: map[string]any{"ID": "P3", "Name": "Low awareness", "Affected Outcomes": links("recO3")}},
			},
			source.TableProjects: {
				{ID: "recPr1", Fields: map[string]any{"Name": "Bridge Fund", "Status": "Active", "Organizations": links("recOrgA", "recOrgB"), "Problems Addressed": links("recP1"), "Website": "https://bridge.example.org"}},
				{ID: "recPr2", Fields: map[string]any{"Name": "Data Commons", "Status": "Planned", "Organizations": links("recOrgB"), "Problems Addressed": links("recP2", "recP1")}},
				{ID: "recPr3", Fields: map[string]any{"Name": "Orphan Project", "Status": "Active"}},
			},
		},
	}
}

// Graph builds the fixture with lenient resolution and overwrite collisions.
func Graph(tb testing.TB) *graph.Graph {
	tb.Helper()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		ResolutionMode: graph.ResolveLenient,
		CollisionMode:  slug.CollisionOverwrite,
	})
	if err != nil {
		tb.Fatalf("NewGraphClient() error = %v", err)
	}
	g, err := client.Build(Snapshot().Tables)
	if err != nil {
		tb.Fatalf("Build() error = %v", err)
	}
	return g
}
