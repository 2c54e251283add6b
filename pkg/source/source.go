package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownTable is returned by sources asked for a table they do not hold.
var ErrUnknownTable = errors.New("unknown table")

// Table names one table of the record store.
type Table string

const (
	TableOrganizations     Table = "Organizations"
	TableWorldviews        Table = "Worldviews"
	TableOutcomes          Table = "Outcomes"
	TableOutcomeWorldviews Table = "Outcome Worldviews"
	TableProblemCategories Table = "Problem Categories"
	TableProblems          Table = "Problems"
	TableProjects          Table = "Projects"
)

// AllTables lists every table the graph consumes, in build order. The
// relevance join table sits next to the outcomes it annotates.
var AllTables = []Table{
	TableOrganizations,
	TableWorldviews,
	TableOutcomes,
	TableOutcomeWorldviews,
	TableProblemCategories,
	TableProblems,
	TableProjects,
}

// RecordSource supplies the raw records of one table per call.
// Implementations may load from the hosted record store, a snapshot file,
// object storage or a database mirror.
type RecordSource interface {
	FetchTable(ctx context.Context, table Table) ([]Record, error)
}

// Record is a raw row of the record store. Fields hold scalars, lists of
// strings (multi-select values or linked record ids) and occasionally
// numbers, exactly as the store returns them.
type Record struct {
	ID          string         `json:"id" yaml:"id"`
	Fields      map[string]any `json:"fields" yaml:"fields"`
	CreatedTime string         `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
}

// Text returns the named field as a string. Lists are joined with ", ",
// numbers and booleans are formatted, missing fields yield "".
func (r Record) Text(field string) string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		return strings.Join(toStrings(val), ", ")
	default:
		return scalarString(val)
	}
}

// Strings returns the named field as a list. A scalar becomes a one element
// list, missing or empty fields an empty list.
func (r Record) Strings(field string) []string {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return []string{}
	}
	switch val := v.(type) {
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		return toStrings(val)
	case string:
		if strings.TrimSpace(val) == "" {
			return []string{}
		}
		return []string{val}
	default:
		return []string{scalarString(val)}
	}
}

// Links returns the linked record ids held in field.
func (r Record) Links(field string) []string {
	return r.Strings(field)
}

// Number returns the named field as float64 when it holds a number or a
// numeric string.
func (r Record) Number(field string) (float64, bool) {
	switch val := r.Fields[field].(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toStrings(in []any) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item == nil {
			continue
		}
		s, ok := item.(string)
		if !ok {
			s = scalarString(item)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func scalarString(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		// attachment and collaborator cells carry a display name
		if name, ok := val["name"].(string); ok {
			return name
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Invalidator is implemented by caching sources. Callers reloading the graph
// invalidate first so the reload observes fresh data.
type Invalidator interface {
	Invalidate()
}
