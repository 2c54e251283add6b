// Package pathway implements the four stage pathway explorer: worldviews,
// then outcomes, then problems, then projects. A State holds the selection
// of every stage and is never modified in place; transitions return a new
// State. An Explorer evaluates a State against a graph.
package pathway

import (
	"fmt"
	"slices"
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
)

// Stage is one of the ordered steps of the explorer.
type Stage int

const (
	StageWorldview Stage = iota
	StageOutcome
	StageProblem
	StageProject
)

// Stages lists every stage in order.
var Stages = []Stage{StageWorldview, StageOutcome, StageProblem, StageProject}

func (s Stage) String() string {
	switch s {
	case StageWorldview:
		return "worldview"
	case StageOutcome:
		return "outcome"
	case StageProblem:
		return "problem"
	case StageProject:
		return "project"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) valid() bool {
	return s >= StageWorldview && s <= StageProject
}

// ParseStage accepts a stage name in singular or plural form, or its
// number from 1 to 4.
func ParseStage(v string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "worldview", "worldviews", "1":
		return StageWorldview, nil
	case "outcome", "outcomes", "2":
		return StageOutcome, nil
	case "problem", "problems", "3":
		return StageProblem, nil
	case "project", "projects", "4":
		return StageProject, nil
	}
	return 0, fmt.Errorf("unknown stage %q", v)
}

// State is the selection of the explorer. The zero value is the initial
// state: nothing selected and every relevance level allowed.
//
// The gate is strictly linear: a stage accepts selections only while it is
// visible, and emptying a stage clears every later stage.
type State struct {
	selected  [4][]string
	relevance []common.RelevanceLevel
}

func New() State {
	return State{}
}

// Selected returns the slugs selected at stage in selection order.
func (s State) Selected(stage Stage) []string {
	if !stage.valid() {
		return []string{}
	}
	return slices.Clone(nonNil(s.selected[stage]))
}

func (s State) IsSelected(stage Stage, slug string) bool {
	return stage.valid() && slices.Contains(s.selected[stage], slug)
}

// Visible reports whether stage is shown. The first stage always is; every
// other stage is shown iff the stage before it has a selection.
func (s State) Visible(stage Stage) bool {
	if !stage.valid() {
		return false
	}
	if stage == StageWorldview {
		return true
	}
	return len(s.selected[stage-1]) > 0
}

// Visibility returns Visible for every stage in order.
func (s State) Visibility() []bool {
	out := make([]bool, len(Stages))
	for i, stage := range Stages {
		out[i] = s.Visible(stage)
	}
	return out
}

// Toggle selects slug at stage if absent and deselects it otherwise.
// Toggling on a hidden stage returns the state unchanged.
func (s State) Toggle(stage Stage, slug string) State {
	if !s.Visible(stage) || slug == "" {
		return s
	}

	next := s.clone()
	current := next.selected[stage]
	if i := slices.Index(current, slug); i >= 0 {
		next.selected[stage] = slices.Delete(current, i, i+1)
	} else {
		next.selected[stage] = append(current, slug)
	}

	if len(next.selected[stage]) == 0 {
		for later := stage + 1; later <= StageProject; later++ {
			next.selected[later] = nil
		}
	}
	return next
}

// ClearAll returns the initial state: every stage empty and every relevance
// level allowed.
func (s State) ClearAll() State {
	return New()
}

// SetRelevanceFilter replaces the relevance filter. No levels means every
// level is allowed.
func (s State) SetRelevanceFilter(levels ...common.RelevanceLevel) State {
	next := s.clone()
	next.relevance = make([]common.RelevanceLevel, 0, len(levels))
	for _, l := range common.AllRelevanceLevels {
		if slices.Contains(levels, l) {
			next.relevance = append(next.relevance, l)
		}
	}
	return next
}

// RelevanceFilter returns the effective filter, strongest level first.
func (s State) RelevanceFilter() []common.RelevanceLevel {
	if len(s.relevance) == 0 {
		return slices.Clone(common.AllRelevanceLevels)
	}
	return slices.Clone(s.relevance)
}

func (s State) allows(level common.RelevanceLevel) bool {
	return len(s.relevance) == 0 || slices.Contains(s.relevance, level)
}

func (s State) clone() State {
	next := State{relevance: slices.Clone(s.relevance)}
	for i := range s.selected {
		next.selected[i] = slices.Clone(s.selected[i])
	}
	return next
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
