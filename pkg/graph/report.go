package graph

import (
	"errors"
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/pkg/schema"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

// ErrUnresolvedReference is returned in strict mode when a relationship
// field names a record that has no slug in the target table.
var ErrUnresolvedReference = errors.New("unresolved reference")

// ResolutionMode decides how builders treat references they cannot
// resolve.
type ResolutionMode int

const (
	// ResolveLenient drops unresolvable references and records them in the
	// Report.
	ResolveLenient ResolutionMode = iota
	// ResolveStrict fails the build on the first unresolvable reference.
	ResolveStrict
)

// ParseResolutionMode accepts "lenient" and "strict", ignoring case and
// surrounding space. Anything else yields ResolveLenient.
func ParseResolutionMode(s string) ResolutionMode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return ResolveStrict
	}
	return ResolveLenient
}

func (m ResolutionMode) String() string {
	if m == ResolveStrict {
		return "strict"
	}
	return "lenient"
}

// DroppedReference is a linked record id that could not be resolved.
type DroppedReference struct {
	Table    source.Table `json:"table"`
	RecordID string       `json:"record_id"`
	Field    string       `json:"field"`
	Target   source.Table `json:"target"`
	LinkedID string       `json:"linked_id"`
}

// Report collects the data quality findings of one build.
type Report struct {
	Dropped    []DroppedReference               `json:"dropped"`
	Collisions map[source.Table][]slug.Collision `json:"collisions"`
	Issues     []schema.Issue                   `json:"issues"`
}

func newReport() Report {
	return Report{
		Dropped:    make([]DroppedReference, 0),
		Collisions: make(map[source.Table][]slug.Collision),
		Issues:     make([]schema.Issue, 0),
	}
}

// CollisionCount returns the number of slug collisions over all tables.
func (r Report) CollisionCount() int {
	n := 0
	for _, c := range r.Collisions {
		n += len(c)
	}
	return n
}

// Clean reports whether the build saw no dropped references, collisions or
// schema issues.
func (r Report) Clean() bool {
	return len(r.Dropped) == 0 && r.CollisionCount() == 0 && len(r.Issues) == 0
}
