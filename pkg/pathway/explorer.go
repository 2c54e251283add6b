package pathway

import (
	"slices"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
)

// Result is the relevant set of one stage. Computed is false while the
// stage is hidden; a computed result without items is an explicit "no
// items" answer.
type Result[T any] struct {
	Computed bool `json:"computed"`
	Items    []T  `json:"items"`
}

// NoItems reports whether the stage was computed and matched nothing.
func (r Result[T]) NoItems() bool {
	return r.Computed && len(r.Items) == 0
}

func notComputed[T any]() Result[T] {
	return Result[T]{Computed: false, Items: []T{}}
}

// Explorer answers relevant-set queries for states over one graph. It is
// safe for concurrent use since neither the graph nor states change.
type Explorer struct {
	graph *graph.Graph
}

func NewExplorer(g *graph.Graph) *Explorer {
	return &Explorer{graph: g}
}

// RelevantOutcomes returns every outcome relevant, at a level allowed by
// the filter, to any selected worldview.
func (e *Explorer) RelevantOutcomes(s State) Result[common.Outcome] {
	if !s.Visible(StageOutcome) {
		return notComputed[common.Outcome]()
	}
	worldviews := s.selected[StageWorldview]
	items := e.graph.Outcomes.Filter(func(o common.Outcome) bool {
		for _, wv := range worldviews {
			if level, ok := o.Relevance[wv]; ok && s.allows(level) {
				return true
			}
		}
		return false
	})
	return Result[common.Outcome]{Computed: true, Items: items}
}

// RelevantProblems returns every problem affecting any selected outcome.
func (e *Explorer) RelevantProblems(s State) Result[common.Problem] {
	if !s.Visible(StageProblem) {
		return notComputed[common.Problem]()
	}
	outcomes := s.selected[StageOutcome]
	items := e.graph.Problems.Filter(func(p common.Problem) bool {
		return intersects(p.AffectedOutcomes, outcomes)
	})
	return Result[common.Problem]{Computed: true, Items: items}
}

// RelevantProjects returns every project addressing any selected problem.
func (e *Explorer) RelevantProjects(s State) Result[common.Project] {
	if !s.Visible(StageProject) {
		return notComputed[common.Project]()
	}
	problems := s.selected[StageProblem]
	items := e.graph.Projects.Filter(func(p common.Project) bool {
		return intersects(p.AddressedProblems, problems)
	})
	return Result[common.Project]{Computed: true, Items: items}
}

// View is a full evaluation of a state.
type View struct {
	Selection  Selection               `json:"selection"`
	Visibility []bool                  `json:"visibility"`
	Outcomes   Result[common.Outcome]  `json:"outcomes"`
	Problems   Result[common.Problem]  `json:"problems"`
	Projects   Result[common.Project]  `json:"projects"`
	Relevance  []common.RelevanceLevel `json:"relevance"`
}

func (e *Explorer) Evaluate(s State) View {
	return View{
		Selection:  s.Selection(),
		Visibility: s.Visibility(),
		Outcomes:   e.RelevantOutcomes(s),
		Problems:   e.RelevantProblems(s),
		Projects:   e.RelevantProjects(s),
		Relevance:  s.RelevanceFilter(),
	}
}

func intersects(a []string, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
