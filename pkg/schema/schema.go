// Package schema turns the untyped records of the record store into strict
// rows, one row type per table. Parsing never fails: values that do not fit
// the schema are defaulted or dropped and reported as Issues.
package schema

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// Issue describes a value that did not fit the schema.
type Issue struct {
	Table    source.Table `json:"table"`
	RecordID string       `json:"record_id"`
	Field    string       `json:"field,omitempty"`
	Message  string       `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s/%s: %s", i.Table, i.RecordID, i.Message)
	}
	return fmt.Sprintf("%s/%s.%s: %s", i.Table, i.RecordID, i.Field, i.Message)
}

type OrganizationRow struct {
	ID           string `validate:"required"`
	Name         string
	Roles        []string
	EntityType   string
	City         string
	States       []string
	Countries    []string
	People       []string
	Affiliations []string
}

type WorldviewRow struct {
	ID                   string `validate:"required"`
	Name                 string
	ShortName            string
	Color                string
	Cluster              string
	ClusterDescription   string
	Tagline              string
	Description          string
	Vision               string
	Approach             string
	Strengths            string
	Tensions             string
	Allies               string
	ExampleOrganizations []string
}

type OutcomeRow struct {
	ID                string `validate:"required"`
	DisplayID         string
	Name              string
	ShortDescription  string
	LongDescription   string
	SuccessIndicators string
}

// RelevanceRow is one triple of the outcome x worldview join table. Level
// holds the canonical spelling of the relevance level.
type RelevanceRow struct {
	ID        string `validate:"required"`
	Outcome   string `validate:"required"`
	Worldview string `validate:"required"`
	Level     string `validate:"required,oneof=High Medium Low"`
}

type ProblemCategoryRow struct {
	ID   string `validate:"required"`
	Name string
}

type ProblemRow struct {
	ID               string `validate:"required"`
	DisplayID        string
	Name             string
	Description      string
	Category         string
	AffectedOutcomes []string
}

type ProjectRow struct {
	ID                string `validate:"required"`
	Name              string
	Description       string
	Status            string
	Organizations     []string
	AddressedProblems []string
	Geography         string
	Funding           string
	Website           string `validate:"omitempty,url"`
}

// parse maps every record through fn and validates the row. Rows failing
// validation are dropped and reported.
func parse[T any](table source.Table, records []source.Record, fn func(source.Record, *[]Issue) T) ([]T, []Issue) {
	rows := make([]T, 0, len(records))
	issues := make([]Issue, 0)

	for _, r := range records {
		row := fn(r, &issues)
		if err := validate.Struct(row); err != nil {
			issues = append(issues, validationIssues(table, r.ID, err)...)
			continue
		}
		rows = append(rows, row)
	}

	return rows, issues
}

func validationIssues(table source.Table, recordID string, err error) []Issue {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Table: table, RecordID: recordID, Message: err.Error()}}
	}

	out := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("failed %q validation", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
		}
		out = append(out, Issue{
			Table:    table,
			RecordID: recordID,
			Field:    fe.Field(),
			Message:  msg,
		})
	}
	return out
}

func text(r source.Record, field string) string {
	return util.NormalizeText(r.Text(field))
}

func list(r source.Record, field string) []string {
	return util.NormalizeList(r.Strings(field))
}

// single returns the first linked id of a field that should hold one link.
func single(table source.Table, r source.Record, field string, issues *[]Issue) string {
	links := util.NormalizeList(r.Links(field))
	if len(links) == 0 {
		return ""
	}
	if len(links) > 1 {
		*issues = append(*issues, Issue{
			Table:    table,
			RecordID: r.ID,
			Field:    field,
			Message:  fmt.Sprintf("expected a single link, got %d; using the first", len(links)),
		})
	}
	return links[0]
}

func ParseOrganizations(records []source.Record) ([]OrganizationRow, []Issue) {
	return parse(source.TableOrganizations, records, func(r source.Record, _ *[]Issue) OrganizationRow {
		return OrganizationRow{
			ID:           r.ID,
			Name:         text(r, FieldOrgName),
			Roles:        list(r, FieldOrgRoles),
			EntityType:   text(r, FieldOrgEntityType),
			City:         text(r, FieldOrgCity),
			States:       list(r, FieldOrgStates),
			Countries:    list(r, FieldOrgCountries),
			People:       list(r, FieldOrgPeople),
			Affiliations: list(r, FieldOrgAffiliations),
		}
	})
}

func ParseWorldviews(records []source.Record) ([]WorldviewRow, []Issue) {
	return parse(source.TableWorldviews, records, func(r source.Record, _ *[]Issue) WorldviewRow {
		return WorldviewRow{
			ID:                   r.ID,
			Name:                 text(r, FieldWorldviewName),
			ShortName:            text(r, FieldWorldviewShortName),
			Color:                text(r, FieldWorldviewColor),
			Cluster:              text(r, FieldWorldviewCluster),
			ClusterDescription:   text(r, FieldWorldviewClusterDescription),
			Tagline:              text(r, FieldWorldviewTagline),
			Description:          text(r, FieldWorldviewDescription),
			Vision:               text(r, FieldWorldviewVision),
			Approach:             text(r, FieldWorldviewApproach),
			Strengths:            text(r, FieldWorldviewStrengths),
			Tensions:             text(r, FieldWorldviewTensions),
			Allies:               text(r, FieldWorldviewAllies),
			ExampleOrganizations: splitNames(list(r, FieldWorldviewExamples)),
		}
	})
}

func ParseOutcomes(records []source.Record) ([]OutcomeRow, []Issue) {
	return parse(source.TableOutcomes, records, func(r source.Record, _ *[]Issue) OutcomeRow {
		return OutcomeRow{
			ID:                r.ID,
			DisplayID:         text(r, FieldOutcomeID),
			Name:              text(r, FieldOutcomeName),
			ShortDescription:  text(r, FieldOutcomeShortDescription),
			LongDescription:   text(r, FieldOutcomeLongDescription),
			SuccessIndicators: text(r, FieldOutcomeSuccessIndicators),
		}
	})
}

// ParseRelevance parses the outcome x worldview join table. Triples with a
// missing link or an unknown level are dropped.
func ParseRelevance(records []source.Record) ([]RelevanceRow, []Issue) {
	table := source.TableOutcomeWorldviews
	return parse(table, records, func(r source.Record, issues *[]Issue) RelevanceRow {
		raw := text(r, FieldRelevanceLevel)
		level := raw
		if parsed, ok := common.ParseRelevanceLevel(raw); ok {
			level = string(parsed)
		}
		return RelevanceRow{
			ID:        r.ID,
			Outcome:   single(table, r, FieldRelevanceOutcome, issues),
			Worldview: single(table, r, FieldRelevanceWorldview, issues),
			Level:     level,
		}
	})
}

func ParseProblemCategories(records []source.Record) ([]ProblemCategoryRow, []Issue) {
	return parse(source.TableProblemCategories, records, func(r source.Record, _ *[]Issue) ProblemCategoryRow {
		return ProblemCategoryRow{
			ID:   r.ID,
			Name: text(r, FieldCategoryName),
		}
	})
}

func ParseProblems(records []source.Record) ([]ProblemRow, []Issue) {
	table := source.TableProblems
	return parse(table, records, func(r source.Record, issues *[]Issue) ProblemRow {
		return ProblemRow{
			ID:               r.ID,
			DisplayID:        text(r, FieldProblemID),
			Name:             text(r, FieldProblemName),
			Description:      text(r, FieldProblemDescription),
			Category:         single(table, r, FieldProblemCategory, issues),
			AffectedOutcomes: list(r, FieldProblemAffectedOutcomes),
		}
	})
}

// ParseProjects parses the projects table. An invalid website is cleared
// and reported; the project itself is kept.
func ParseProjects(records []source.Record) ([]ProjectRow, []Issue) {
	table := source.TableProjects
	return parse(table, records, func(r source.Record, issues *[]Issue) ProjectRow {
		website := text(r, FieldProjectWebsite)
		if website != "" {
			if err := validate.Var(website, "url"); err != nil {
				*issues = append(*issues, Issue{
					Table:    table,
					RecordID: r.ID,
					Field:    FieldProjectWebsite,
					Message:  fmt.Sprintf("invalid url %q cleared", website),
				})
				website = ""
			}
		}

		return ProjectRow{
			ID:                r.ID,
			Name:              text(r, FieldProjectName),
			Description:       text(r, FieldProjectDescription),
			Status:            text(r, FieldProjectStatus),
			Organizations:     list(r, FieldProjectOrganizations),
			AddressedProblems: list(r, FieldProjectProblems),
			Geography:         text(r, FieldProjectGeography),
			Funding:           text(r, FieldProjectFunding),
			Website:           website,
		}
	})
}

// splitNames accepts example organizations stored either as a list or as a
// single comma separated text cell.
func splitNames(values []string) []string {
	if len(values) != 1 || !strings.Contains(values[0], ",") {
		return values
	}
	return util.NormalizeList(strings.Split(values[0], ","))
}
