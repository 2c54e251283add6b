package source

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeSource struct {
	tables map[Table][]Record
	err    error
}

func (f *fakeSource) FetchTable(ctx context.Context, table Table) ([]Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[table], nil
}

func TestRecordText(t *testing.T) {
	r := Record{ID: "rec1", Fields: map[string]any{
		"Name":     "Acme",
		"Count":    float64(3),
		"Flag":     true,
		"Lookup":   []any{"a", "b"},
		"Strings":  []string{"x", "y"},
		"Nil":      nil,
		"Attached": map[string]any{"name": "logo.png"},
	}}

	tests := []struct {
		field string
		want  string
	}{
		{"Name", "Acme"},
		{"Count", "3"},
		{"Flag", "true"},
		{"Lookup", "a, b"},
		{"Strings", "x, y"},
		{"Nil", ""},
		{"Missing", ""},
		{"Attached", "logo.png"},
	}
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			if got := r.Text(tc.field); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestRecordStrings(t *testing.T) {
	r := Record{ID: "rec1", Fields: map[string]any{
		"Roles":  []any{"Funder", "", nil, "Media"},
		"Single": "Advocacy",
		"Blank":  "  ",
		"Typed":  []string{"a", " ", "b"},
		"Number": float64(7),
	}}

	tests := []struct {
		field string
		want  []string
	}{
		{"Roles", []string{"Funder", "Media"}},
		{"Single", []string{"Advocacy"}},
		{"Blank", []string{}},
		{"Typed", []string{"a", "b"}},
		{"Number", []string{"7"}},
		{"Missing", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			if got := r.Strings(tc.field); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Strings(%q) = %#v, want %#v", tc.field, got, tc.want)
			}
		})
	}
}

func TestRecordNumber(t *testing.T) {
	r := Record{Fields: map[string]any{"F": float64(1.5), "S": " 42 ", "Bad": "x"}}
	if v, ok := r.Number("F"); !ok || v != 1.5 {
		t.Fatalf("Number(F) = %v, %v", v, ok)
	}
	if v, ok := r.Number("S"); !ok || v != 42 {
		t.Fatalf("Number(S) = %v, %v", v, ok)
	}
	if _, ok := r.Number("Bad"); ok {
		t.Fatal("Number(Bad) should fail")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := &fakeSource{tables: map[Table][]Record{
		TableOrganizations: {
			{ID: "recO1", Fields: map[string]any{"Name": "Acme", "Roles": []any{"Funder", "Media"}}},
		},
		TableProblems: {
			{ID: "recP1", Fields: map[string]any{"Name": "Gap", "Affected Outcomes": []any{"recX"}}},
		},
	}}

	snap, err := Export(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := snap.Encode(format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := DecodeSnapshot(data, format)
			if err != nil {
				t.Fatalf("DecodeSnapshot() error = %v", err)
			}

			orgs, err := decoded.FetchTable(context.Background(), TableOrganizations)
			if err != nil {
				t.Fatalf("FetchTable() error = %v", err)
			}
			if len(orgs) != 1 || orgs[0].Text("Name") != "Acme" {
				t.Fatalf("unexpected organizations: %#v", orgs)
			}
			if got := orgs[0].Strings("Roles"); !reflect.DeepEqual(got, []string{"Funder", "Media"}) {
				t.Fatalf("roles = %#v", got)
			}

			problems, _ := decoded.FetchTable(context.Background(), TableProblems)
			if got := problems[0].Links("Affected Outcomes"); !reflect.DeepEqual(got, []string{"recX"}) {
				t.Fatalf("links = %#v", got)
			}

			projects, err := decoded.FetchTable(context.Background(), TableProjects)
			if err != nil || len(projects) != 0 {
				t.Fatalf("expected empty projects table, got %v, %v", projects, err)
			}
		})
	}
}

func TestSnapshotUnknownTable(t *testing.T) {
	snap := &Snapshot{Tables: map[Table][]Record{}}
	_, err := snap.FetchTable(context.Background(), Table("People"))
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestExportPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Export(context.Background(), &fakeSource{err: boom}, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom error, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"snap.yaml":      FormatYAML,
		"snap.YML":       FormatYAML,
		"snap.json":      FormatJSON,
		"snapshot":       FormatJSON,
		"dir.v2/out.yml": FormatYAML,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Fatalf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
