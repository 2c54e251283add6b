package pathway

import (
	"fmt"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
)

// Selection is the serializable form of a State.
type Selection struct {
	Worldviews []string `json:"worldviews" validate:"dive,required"`
	Outcomes   []string `json:"outcomes" validate:"dive,required"`
	Problems   []string `json:"problems" validate:"dive,required"`
	Projects   []string `json:"projects" validate:"dive,required"`
	Relevance  []string `json:"relevance" validate:"dive,oneof=High Medium Low high medium low"`
}

// Selection exports the state.
func (s State) Selection() Selection {
	levels := make([]string, 0, len(s.relevance))
	for _, l := range s.relevance {
		levels = append(levels, string(l))
	}
	return Selection{
		Worldviews: s.Selected(StageWorldview),
		Outcomes:   s.Selected(StageOutcome),
		Problems:   s.Selected(StageProblem),
		Projects:   s.Selected(StageProject),
		Relevance:  levels,
	}
}

// Restore rebuilds a State by toggling every slug of sel stage by stage,
// so the result obeys the gate: slugs of a stage whose predecessor ended up
// empty are discarded. Repeated slugs count once.
func Restore(sel Selection) (State, error) {
	levels := make([]common.RelevanceLevel, 0, len(sel.Relevance))
	for _, raw := range sel.Relevance {
		l, ok := common.ParseRelevanceLevel(raw)
		if !ok {
			return State{}, fmt.Errorf("unknown relevance level %q", raw)
		}
		levels = append(levels, l)
	}

	s := New().SetRelevanceFilter(levels...)
	stages := [][]string{sel.Worldviews, sel.Outcomes, sel.Problems, sel.Projects}
	for i, slugs := range stages {
		stage := Stages[i]
		for _, slug := range slugs {
			if s.IsSelected(stage, slug) {
				continue
			}
			s = s.Toggle(stage, slug)
		}
	}
	return s, nil
}
