// Package aggregate partitions entities into named groups for the grouped
// and bubble views. Key extractors return any number of keys per entity, so
// one entity may be counted in several groups.
package aggregate

import (
	"sort"
	"strings"
)

// DefaultFallback names the group of entities without any key.
const DefaultFallback = "Unknown"

// KeyFunc returns the grouping keys of an entity.
type KeyFunc[T any] func(T) []string

// Single adapts an extractor yielding exactly one key. An empty key counts
// as no key.
func Single[T any](fn func(T) string) KeyFunc[T] {
	return func(item T) []string {
		return []string{fn(item)}
	}
}

// Multi adapts an extractor yielding a list of keys.
func Multi[T any](fn func(T) []string) KeyFunc[T] {
	return KeyFunc[T](fn)
}

// Result is one group. Intensity is Count relative to the largest group of
// the same result list, in (0, 1].
type Result[T any] struct {
	Key       string  `json:"key"`
	Members   []T     `json:"members"`
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"`
}

type options struct {
	fallback string
}

type Option func(*options)

// WithFallback renames the group collecting entities without any key.
func WithFallback(name string) Option {
	return func(o *options) {
		if name != "" {
			o.fallback = name
		}
	}
}

// Group partitions items by the keys keyFn returns. When filterFn is not
// nil it is applied first. Keys are trimmed and repeated keys of one entity
// count once. Groups are ordered by count descending; ties keep the order
// in which the groups were first encountered.
func Group[T any](items []T, keyFn KeyFunc[T], filterFn func(T) bool, opts ...Option) []Result[T] {
	o := options{fallback: DefaultFallback}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int)
	groups := make([]Result[T], 0)

	add := func(key string, item T) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Result[T]{Key: key, Members: make([]T, 0, 1)})
		}
		groups[i].Members = append(groups[i].Members, item)
		groups[i].Count++
	}

	for _, item := range items {
		if filterFn != nil && !filterFn(item) {
			continue
		}
		keys := normalizeKeys(keyFn(item))
		if len(keys) == 0 {
			add(o.fallback, item)
			continue
		}
		for _, k := range keys {
			add(k, item)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	scale(groups)
	return groups
}

// TopN keeps the n largest groups and recomputes intensities against the
// largest remaining group. n <= 0 keeps every group.
func TopN[T any](groups []Result[T], n int) []Result[T] {
	out := make([]Result[T], len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	scale(out)
	return out
}

// Total sums the counts of groups. With fan-out it can exceed the number of
// grouped entities.
func Total[T any](groups []Result[T]) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// Keys returns the keys of groups in order.
func Keys[T any](groups []Result[T]) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func scale[T any](groups []Result[T]) {
	largest := 0
	for _, g := range groups {
		largest = max(largest, g.Count)
	}
	for i := range groups {
		groups[i].Intensity = ratio(groups[i].Count, largest)
	}
}

func ratio(n int, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
