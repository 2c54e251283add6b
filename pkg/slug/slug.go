// Package slug derives human readable identifiers from display names and
// keeps the mapping from opaque record store identifiers to those slugs.
package slug

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	unnamedPrefix   = "unnamed-"
	suffixAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength    = 8
	firstSuffixNext = 2
)

// CollisionMode decides what happens when two records of one entity type
// derive the same slug.
type CollisionMode int

const (
	// CollisionOverwrite lets both records map to the same slug. Whoever
	// builds entities from the map will keep the later record.
	CollisionOverwrite CollisionMode = iota
	// CollisionSuffix appends -2, -3, ... in encounter order so that every
	// record keeps a distinct slug.
	CollisionSuffix
)

// ParseCollisionMode accepts "overwrite" and "suffix". Anything else yields
// CollisionOverwrite.
func ParseCollisionMode(s string) CollisionMode {
	if strings.EqualFold(strings.TrimSpace(s), "suffix") {
		return CollisionSuffix
	}
	return CollisionOverwrite
}

func (m CollisionMode) String() string {
	if m == CollisionSuffix {
		return "suffix"
	}
	return "overwrite"
}

// IDMap maps opaque record identifiers to slugs.
type IDMap map[string]string

// Lookup returns the slug for id.
func (m IDMap) Lookup(id string) (string, bool) {
	s, ok := m[id]
	return s, ok
}

// Collision records that Record derived a slug that Owner already held.
type Collision struct {
	Slug   string `json:"slug"`
	Owner  string `json:"owner"`
	Record string `json:"record"`
	// Assigned is the slug Record ended up with. It equals Slug in
	// overwrite mode.
	Assigned string `json:"assigned"`
}

// Slugify lower-cases name, turns every run of characters outside [a-z0-9]
// into a single hyphen and strips leading and trailing hyphens.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Resolver assigns slugs to the records of a single entity type. It is not
// safe for concurrent use; builders run one type at a time.
type Resolver struct {
	mode       CollisionMode
	ids        IDMap
	owners     map[string]string
	next       map[string]int
	collisions []Collision
}

// NewResolver creates an empty resolver with the given collision mode.
func NewResolver(mode CollisionMode) *Resolver {
	return &Resolver{
		mode:   mode,
		ids:    make(IDMap),
		owners: make(map[string]string),
		next:   make(map[string]int),
	}
}

// Resolve returns the slug for the record, deriving it from name on the
// first call and returning the memoized value afterwards. Records without a
// usable name get an "unnamed-" slug with a random suffix.
func (r *Resolver) Resolve(recordID string, name string) string {
	if s, ok := r.ids[recordID]; ok {
		return s
	}

	base := Slugify(name)
	if base == "" {
		base = unnamedSlug(recordID)
	}

	assigned := base
	if owner, taken := r.owners[base]; taken && owner != recordID {
		if r.mode == CollisionSuffix {
			assigned = r.nextFree(base)
		}
		r.collisions = append(r.collisions, Collision{
			Slug:     base,
			Owner:    owner,
			Record:   recordID,
			Assigned: assigned,
		})
	}

	r.ids[recordID] = assigned
	r.owners[assigned] = recordID
	return assigned
}

// Lookup returns the slug previously assigned to recordID.
func (r *Resolver) Lookup(recordID string) (string, bool) {
	s, ok := r.ids[recordID]
	return s, ok
}

// Owner returns the record that currently holds slug. In overwrite mode
// this is the last record that derived it.
func (r *Resolver) Owner(slug string) (string, bool) {
	id, ok := r.owners[slug]
	return id, ok
}

// IDMap returns a copy of the opaque id to slug mapping.
func (r *Resolver) IDMap() IDMap {
	out := make(IDMap, len(r.ids))
	for k, v := range r.ids {
		out[k] = v
	}
	return out
}

// Collisions returns every collision seen so far in encounter order.
func (r *Resolver) Collisions() []Collision {
	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

func (r *Resolver) Len() int {
	return len(r.ids)
}

func (r *Resolver) nextFree(base string) string {
	n := r.next[base]
	if n < firstSuffixNext {
		n = firstSuffixNext
	}
	for {
		candidate := fmt.Sprintf("%s-%d", base, n)
		n++
		if _, taken := r.owners[candidate]; !taken {
			r.next[base] = n
			return candidate
		}
	}
}

func unnamedSlug(recordID string) string {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil || suffix == "" {
		// fall back to the record id so the slug stays unique per record
		suffix = Slugify(recordID)
	}
	return unnamedPrefix + suffix
}
