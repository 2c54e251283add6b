package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

func rec(id string, fields map[string]any) source.Record {
	return source.Record{ID: id, Fields: fields}
}

func ids(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func TestWorldviewSlugCollisionOverwrites(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	worldviews, idMap, err := b.Worldviews([]source.Record{
		rec("recA", map[string]any{"Name": "Medical/Clinical", "Tagline": "first"}),
		rec("recB", map[string]any{"Name": "Medical / Clinical", "Tagline": "second"}),
	})
	if err != nil {
		t.Fatalf("Worldviews() error = %v", err)
	}

	if idMap["recA"] != "medical-clinical" || idMap["recB"] != "medical-clinical" {
		t.Fatalf("expected both ids on medical-clinical, got %v", idMap)
	}
	if worldviews.Len() != 1 {
		t.Fatalf("expected a single worldview, got %d", worldviews.Len())
	}
	wv, _ := worldviews.Get("medical-clinical")
	if wv.Tagline != "second" {
		t.Fatalf("expected the later record to win, got %q", wv.Tagline)
	}

	collisions := b.Report().Collisions[source.TableWorldviews]
	if len(collisions) != 1 || collisions[0].Owner != "recA" || collisions[0].Record != "recB" {
		t.Fatalf("expected collision to be reported, got %#v", collisions)
	}
}

func TestWorldviewSlugCollisionSuffix(t *testing.T) {
	b := NewBuilder(slug.CollisionSuffix, ResolveLenient)
	worldviews, idMap, err := b.Worldviews([]source.Record{
		rec("recA", map[string]any{"Name": "Medical/Clinical"}),
		rec("recB", map[string]any{"Name": "Medical / Clinical"}),
	})
	if err != nil {
		t.Fatalf("Worldviews() error = %v", err)
	}
	if idMap["recA"] != "medical-clinical" || idMap["recB"] != "medical-clinical-2" {
		t.Fatalf("unexpected id map %v", idMap)
	}
	if !reflect.DeepEqual(worldviews.Slugs(), []string{"medical-clinical", "medical-clinical-2"}) {
		t.Fatalf("unexpected slugs %v", worldviews.Slugs())
	}
}

func TestProblemDropsUnresolvableOutcome(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	_, outcomeIDs, err := b.Outcomes([]source.Record{
		rec("recO1", map[string]any{"Name": "Outcome One"}),
	}, nil, slug.IDMap{})
	if err != nil {
		t.Fatalf("Outcomes() error = %v", err)
	}

	problems, _, err := b.Problems([]source.Record{
		rec("recP1", map[string]any{"Name": "Problem", "Affected Outcomes": ids("recO1", "recGone")}),
	}, slug.IDMap{}, outcomeIDs)
	if err != nil {
		t.Fatalf("Problems() error = %v", err)
	}

	p, ok := problems.Get("problem")
	if !ok {
		t.Fatal("problem missing")
	}
	if !reflect.DeepEqual(p.AffectedOutcomes, []string{"outcome-one"}) {
		t.Fatalf("expected a single affected outcome, got %v", p.AffectedOutcomes)
	}

	dropped := b.Report().Dropped
	if len(dropped) != 1 || dropped[0].LinkedID != "recGone" || dropped[0].Target != source.TableOutcomes {
		t.Fatalf("expected dropped reference to be reported, got %#v", dropped)
	}
}

func TestStrictModeFailsOnDanglingReference(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveStrict)
	_, _, err := b.Problems([]source.Record{
		rec("recP1", map[string]any{"Name": "Problem", "Affected Outcomes": ids("recGone")}),
	}, slug.IDMap{}, slug.IDMap{})
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestParseResolutionMode(t *testing.T) {
	tests := []struct {
		in   string
		want ResolutionMode
	}{
		{"strict", ResolveStrict},
		{"Strict", ResolveStrict},
		{"STRICT", ResolveStrict},
		{" strict\n", ResolveStrict},
		{"lenient", ResolveLenient},
		{"", ResolveLenient},
		{"strictly", ResolveLenient},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := ParseResolutionMode(tc.in); got != tc.want {
				t.Fatalf("ParseResolutionMode(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestEmptyDependencyMapDegradesToEmptyLists(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	projects, _, err := b.Projects([]source.Record{
		rec("recPr", map[string]any{
			"Name":               "Project",
			"Problems Addressed": ids("recP1", "recP2"),
			"Organizations":      ids("recOrg"),
		}),
	}, slug.IDMap{}, slug.IDMap{}, nil)
	if err != nil {
		t.Fatalf("Projects() error = %v", err)
	}
	p, _ := projects.Get("project")
	if p.AddressedProblems == nil || len(p.AddressedProblems) != 0 {
		t.Fatalf("expected empty addressed problems, got %#v", p.AddressedProblems)
	}
	if p.Organizations == nil || len(p.Organizations) != 0 {
		t.Fatalf("expected empty organizations, got %#v", p.Organizations)
	}
}

func TestOrganizationSelfReference(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	orgs, _, err := b.Organizations([]source.Record{
		rec("recA", map[string]any{"Name": "Alpha", "Affiliated Organizations": ids("recB")}),
		rec("recB", map[string]any{"Name": "Beta", "Affiliated Organizations": ids("recA")}),
	})
	if err != nil {
		t.Fatalf("Organizations() error = %v", err)
	}
	alpha, _ := orgs.Get("alpha")
	beta, _ := orgs.Get("beta")
	if !reflect.DeepEqual(alpha.Affiliations, []string{"beta"}) || !reflect.DeepEqual(beta.Affiliations, []string{"alpha"}) {
		t.Fatalf("expected mutual affiliation, got %v and %v", alpha.Affiliations, beta.Affiliations)
	}
}

func TestOutcomeRelevanceMap(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	_, worldviewIDs, _ := b.Worldviews([]source.Record{
		rec("recWvA", map[string]any{"Name": "Wv A"}),
		rec("recWvB", map[string]any{"Name": "Wv B"}),
	})

	outcomes, _, err := b.Outcomes(
		[]source.Record{
			rec("recO1", map[string]any{"Name": "O1"}),
			rec("recO2", map[string]any{"Name": "O2"}),
		},
		[]source.Record{
			rec("recJ1", map[string]any{"Outcome": ids("recO1"), "Worldview": ids("recWvA"), "Relevance": "High"}),
			rec("recJ2", map[string]any{"Outcome": ids("recO2"), "Worldview": ids("recWvB"), "Relevance": "medium"}),
			rec("recJ3", map[string]any{"Outcome": ids("recOGone"), "Worldview": ids("recWvA"), "Relevance": "Low"}),
			rec("recJ4", map[string]any{"Outcome": ids("recO2"), "Worldview": ids("recWvGone"), "Relevance": "Low"}),
		},
		worldviewIDs,
	)
	if err != nil {
		t.Fatalf("Outcomes() error = %v", err)
	}

	o1, _ := outcomes.Get("o1")
	o2, _ := outcomes.Get("o2")
	if !reflect.DeepEqual(o1.Relevance, map[string]common.RelevanceLevel{"wv-a": common.RelevanceHigh}) {
		t.Fatalf("unexpected o1 relevance %v", o1.Relevance)
	}
	if !reflect.DeepEqual(o2.Relevance, map[string]common.RelevanceLevel{"wv-b": common.RelevanceMedium}) {
		t.Fatalf("unexpected o2 relevance %v", o2.Relevance)
	}
	if got := len(b.Report().Dropped); got != 2 {
		t.Fatalf("expected 2 dropped triples, got %d", got)
	}
}

func TestProjectOrganizationsBecomeNames(t *testing.T) {
	b := NewBuilder(slug.CollisionOverwrite, ResolveLenient)
	orgs, orgIDs, _ := b.Organizations([]source.Record{
		rec("recA", map[string]any{"Name": "Alpha Org"}),
		rec("recB", map[string]any{}),
	})
	projects, _, err := b.Projects([]source.Record{
		rec("recPr", map[string]any{"Name": "P", "Organizations": ids("recA", "recB", "recA")}),
	}, slug.IDMap{}, orgIDs, orgs)
	if err != nil {
		t.Fatalf("Projects() error = %v", err)
	}
	p, _ := projects.Get("p")
	if len(p.Organizations) != 2 || p.Organizations[0] != "Alpha Org" {
		t.Fatalf("unexpected organizations %v", p.Organizations)
	}
	if p.Organizations[1] != orgIDs["recB"] {
		t.Fatalf("expected unnamed organization to fall back to its slug, got %q", p.Organizations[1])
	}
}

func TestProblemCategoryIcon(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Funding Gaps", "coins"},
		{"Data Access", "database"},
		{"Public Awareness", "megaphone"},
		{"Miscellaneous", defaultIcon},
		{"", defaultIcon},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := categoryIcon(tc.name); got != tc.want {
				t.Fatalf("categoryIcon(%q) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestCollectionKeepsFirstPosition(t *testing.T) {
	type item struct{ slug, value string }
	c := NewCollection(func(i item) string { return i.slug }, []item{
		{"a", "1"}, {"b", "2"}, {"a", "3"},
	})
	if !reflect.DeepEqual(c.Slugs(), []string{"a", "b"}) {
		t.Fatalf("unexpected order %v", c.Slugs())
	}
	if got, _ := c.Get("a"); got.value != "3" {
		t.Fatalf("expected later value, got %q", got.value)
	}

	var empty *Collection[item]
	if empty.Len() != 0 || len(empty.All()) != 0 || empty.Has("a") {
		t.Fatal("nil collection should behave as empty")
	}
}
