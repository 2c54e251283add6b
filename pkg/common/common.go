package common

import "strings"

// EntityKind names one of the entity types of the theory-of-change graph.
type EntityKind string

const (
	KindOrganization    EntityKind = "organization"
	KindWorldview       EntityKind = "worldview"
	KindOutcome         EntityKind = "outcome"
	KindProblemCategory EntityKind = "problem_category"
	KindProblem         EntityKind = "problem"
	KindProject         EntityKind = "project"
)

// RelevanceLevel describes how strongly a worldview relates to an outcome.
type RelevanceLevel string

const (
	RelevanceHigh   RelevanceLevel = "High"
	RelevanceMedium RelevanceLevel = "Medium"
	RelevanceLow    RelevanceLevel = "Low"
)

// AllRelevanceLevels lists every relevance level from strongest to weakest.
var AllRelevanceLevels = []RelevanceLevel{RelevanceHigh, RelevanceMedium, RelevanceLow}

// ParseRelevanceLevel maps free text such as "high" or " Medium " onto a
// RelevanceLevel. The second return value is false for anything else.
func ParseRelevanceLevel(s string) (RelevanceLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RelevanceHigh, true
	case "medium":
		return RelevanceMedium, true
	case "low":
		return RelevanceLow, true
	}
	return "", false
}

// Organization is an actor of the ecosystem: a funder, an advocacy group,
// a research institute and so on.
//
// Roles may hold several tags, which is why organization groupings fan out.
// People are display names only; Affiliations are slugs of other
// organizations.
type Organization struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	EntityType   string   `json:"entity_type"`
	City         string   `json:"city"`
	States       []string `json:"states"`
	Countries    []string `json:"countries"`
	People       []string `json:"people"`
	Affiliations []string `json:"affiliations"`
}

// Worldview is a perspective on what change is needed. Worldviews are the
// first stage of a pathway.
type Worldview struct {
	Slug                 string   `json:"slug"`
	Name                 string   `json:"name"`
	ShortName            string   `json:"short_name"`
	Color                string   `json:"color"`
	Cluster              string   `json:"cluster"`
	ClusterDescription   string   `json:"cluster_description"`
	Tagline              string   `json:"tagline"`
	Description          string   `json:"description"`
	Vision               string   `json:"vision"`
	Approach             string   `json:"approach"`
	Strengths            string   `json:"strengths"`
	Tensions             string   `json:"tensions"`
	Allies               string   `json:"allies"`
	ExampleOrganizations []string `json:"example_organizations"`
}

// Outcome is a desired end state. Relevance maps worldview slugs to how
// strongly that worldview cares about the outcome; worldviews without an
// entry are not related.
type Outcome struct {
	Slug              string                    `json:"slug"`
	DisplayID         string                    `json:"display_id"`
	Name              string                    `json:"name"`
	ShortDescription  string                    `json:"short_description"`
	LongDescription   string                    `json:"long_description"`
	SuccessIndicators string                    `json:"success_indicators"`
	Relevance         map[string]RelevanceLevel `json:"relevance"`
}

// RelevanceFor returns the level the outcome has for the given worldview.
func (o Outcome) RelevanceFor(worldview string) (RelevanceLevel, bool) {
	level, ok := o.Relevance[worldview]
	return level, ok
}

type ProblemCategory struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Problem is an obstacle standing between the present and one or more
// outcomes. Category is a problem category slug or empty.
type Problem struct {
	Slug             string   `json:"slug"`
	DisplayID        string   `json:"display_id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	AffectedOutcomes []string `json:"affected_outcomes"`
}

// Project is concrete work addressing problems.
//
// Organizations holds organization names rather than slugs: consumers only
// ever display them.
type Project struct {
	Slug              string   `json:"slug"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Status            string   `json:"status"`
	Organizations     []string `json:"organizations"`
	AddressedProblems []string `json:"addressed_problems"`
	Geography         string   `json:"geography,omitempty"`
	Funding           string   `json:"funding,omitempty"`
	Website           string   `json:"website,omitempty"`
}
