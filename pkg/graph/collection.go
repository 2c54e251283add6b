package graph

import "encoding/json"

// Collection is an arena of entities of one type indexed by slug. It keeps
// insertion order so listings are stable across loads. A Collection is
// immutable once built.
type Collection[T any] struct {
	order []string
	items map[string]T
}

// NewCollection builds a collection from items in order. When two items
// share a slug the later one wins but keeps the position of the first.
func NewCollection[T any](slugOf func(T) string, items []T) *Collection[T] {
	c := &Collection[T]{
		order: make([]string, 0, len(items)),
		items: make(map[string]T, len(items)),
	}
	for _, item := range items {
		s := slugOf(item)
		if _, ok := c.items[s]; !ok {
			c.order = append(c.order, s)
		}
		c.items[s] = item
	}
	return c
}

func (c *Collection[T]) Get(slug string) (T, bool) {
	if c == nil {
		var zero T
		return zero, false
	}
	item, ok := c.items[slug]
	return item, ok
}

func (c *Collection[T]) Has(slug string) bool {
	_, ok := c.Get(slug)
	return ok
}

func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// All returns every entity in insertion order.
func (c *Collection[T]) All() []T {
	return c.Filter(nil)
}

// Filter returns the entities matching keep in insertion order. A nil keep
// matches everything.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, c.Len())
	if c == nil {
		return out
	}
	for _, s := range c.order {
		item := c.items[s]
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Collection[T]) Slugs() []string {
	out := make([]string, c.Len())
	if c != nil {
		copy(out, c.order)
	}
	return out
}

func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}
