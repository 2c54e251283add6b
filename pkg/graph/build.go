package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/schema"
	"github.com/OFFIS-RIT/pathways/backend/pkg/slug"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
)

// Builder turns the raw records of each table into a typed collection. One
// method exists per entity type; each consumes the id maps of the types it
// references, so callers must build in dependency order:
// Organizations, Worldviews, Outcomes, ProblemCategories, Problems,
// Projects.
//
// A Builder accumulates a Report over all build calls and is not safe for
// concurrent use.
type Builder struct {
	collisions slug.CollisionMode
	resolution ResolutionMode
	report     Report
}

func NewBuilder(collisions slug.CollisionMode, resolution ResolutionMode) *Builder {
	return &Builder{
		collisions: collisions,
		resolution: resolution,
		report:     newReport(),
	}
}

// Report returns the findings of every build so far.
func (b *Builder) Report() Report {
	return b.report
}

func (b *Builder) Organizations(records []source.Record) (*Collection[common.Organization], slug.IDMap, error) {
	table := source.TableOrganizations
	rows, issues := schema.ParseOrganizations(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	orgs := make([]common.Organization, 0, len(rows))
	for _, row := range rows {
		affiliations, err := b.resolveAll(table, row.ID, schema.FieldOrgAffiliations, table, row.Affiliations, ids)
		if err != nil {
			return nil, nil, err
		}
		orgs = append(orgs, common.Organization{
			Slug:         ids[row.ID],
			Name:         row.Name,
			Roles:        row.Roles,
			EntityType:   row.EntityType,
			City:         row.City,
			States:       row.States,
			Countries:    row.Countries,
			People:       row.People,
			Affiliations: affiliations,
		})
	}

	return NewCollection(func(o common.Organization) string { return o.Slug }, orgs), ids, nil
}

func (b *Builder) Worldviews(records []source.Record) (*Collection[common.Worldview], slug.IDMap, error) {
	table := source.TableWorldviews
	rows, issues := schema.ParseWorldviews(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	worldviews := make([]common.Worldview, 0, len(rows))
	for _, row := range rows {
		worldviews = append(worldviews, common.Worldview{
			Slug:                 ids[row.ID],
			Name:                 row.Name,
			ShortName:            row.ShortName,
			Color:                row.Color,
			Cluster:              row.Cluster,
			ClusterDescription:   row.ClusterDescription,
			Tagline:              row.Tagline,
			Description:          row.Description,
			Vision:               row.Vision,
			Approach:             row.Approach,
			Strengths:            row.Strengths,
			Tensions:             row.Tensions,
			Allies:               row.Allies,
			ExampleOrganizations: row.ExampleOrganizations,
		})
	}

	return NewCollection(func(w common.Worldview) string { return w.Slug }, worldviews), ids, nil
}

// Outcomes builds the outcomes and their relevance maps. relevance holds the
// records of the outcome x worldview join table; triples whose outcome or
// worldview cannot be resolved are skipped.
func (b *Builder) Outcomes(
	records []source.Record,
	relevance []source.Record,
	worldviewIDs slug.IDMap,
) (*Collection[common.Outcome], slug.IDMap, error) {
	table := source.TableOutcomes
	rows, issues := schema.ParseOutcomes(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	joinTable := source.TableOutcomeWorldviews
	triples, issues := schema.ParseRelevance(relevance)
	b.addIssues(joinTable, issues)

	levels := make(map[string]map[string]common.RelevanceLevel)
	for _, t := range triples {
		outcome, err := b.resolveOne(joinTable, t.ID, schema.FieldRelevanceOutcome, table, t.Outcome, ids)
		if err != nil {
			return nil, nil, err
		}
		worldview, err := b.resolveOne(joinTable, t.ID, schema.FieldRelevanceWorldview, source.TableWorldviews, t.Worldview, worldviewIDs)
		if err != nil {
			return nil, nil, err
		}
		if outcome == "" || worldview == "" {
			continue
		}
		if levels[t.Outcome] == nil {
			levels[t.Outcome] = make(map[string]common.RelevanceLevel)
		}
		levels[t.Outcome][worldview] = common.RelevanceLevel(t.Level)
	}

	outcomes := make([]common.Outcome, 0, len(rows))
	for _, row := range rows {
		rel := levels[row.ID]
		if rel == nil {
			rel = make(map[string]common.RelevanceLevel)
		}
		outcomes = append(outcomes, common.Outcome{
			Slug:              ids[row.ID],
			DisplayID:         row.DisplayID,
			Name:              row.Name,
			ShortDescription:  row.ShortDescription,
			LongDescription:   row.LongDescription,
			SuccessIndicators: row.SuccessIndicators,
			Relevance:         rel,
		})
	}

	return NewCollection(func(o common.Outcome) string { return o.Slug }, outcomes), ids, nil
}

func (b *Builder) ProblemCategories(records []source.Record) (*Collection[common.ProblemCategory], slug.IDMap, error) {
	table := source.TableProblemCategories
	rows, issues := schema.ParseProblemCategories(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	categories := make([]common.ProblemCategory, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, common.ProblemCategory{
			Slug: ids[row.ID],
			Name: row.Name,
			Icon: categoryIcon(row.Name),
		})
	}

	return NewCollection(func(c common.ProblemCategory) string { return c.Slug }, categories), ids, nil
}

func (b *Builder) Problems(
	records []source.Record,
	categoryIDs slug.IDMap,
	outcomeIDs slug.IDMap,
) (*Collection[common.Problem], slug.IDMap, error) {
	table := source.TableProblems
	rows, issues := schema.ParseProblems(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	problems := make([]common.Problem, 0, len(rows))
	for _, row := range rows {
		category, err := b.resolveOne(table, row.ID, schema.FieldProblemCategory, source.TableProblemCategories, row.Category, categoryIDs)
		if err != nil {
			return nil, nil, err
		}
		affected, err := b.resolveAll(table, row.ID, schema.FieldProblemAffectedOutcomes, source.TableOutcomes, row.AffectedOutcomes, outcomeIDs)
		if err != nil {
			return nil, nil, err
		}
		problems = append(problems, common.Problem{
			Slug:             ids[row.ID],
			DisplayID:        row.DisplayID,
			Name:             row.Name,
			Description:      row.Description,
			Category:         category,
			AffectedOutcomes: affected,
		})
	}

	return NewCollection(func(p common.Problem) string { return p.Slug }, problems), ids, nil
}

// Projects builds the projects. Organizations are stored by name: the ids
// are resolved to slugs through organizationIDs and then to the name of the
// organization holding that slug.
func (b *Builder) Projects(
	records []source.Record,
	problemIDs slug.IDMap,
	organizationIDs slug.IDMap,
	organizations *Collection[common.Organization],
) (*Collection[common.Project], slug.IDMap, error) {
	table := source.TableProjects
	rows, issues := schema.ParseProjects(records)
	b.addIssues(table, issues)

	resolver := slug.NewResolver(b.collisions)
	for _, row := range rows {
		resolver.Resolve(row.ID, row.Name)
	}
	ids := b.finish(table, resolver)

	projects := make([]common.Project, 0, len(rows))
	for _, row := range rows {
		addressed, err := b.resolveAll(table, row.ID, schema.FieldProjectProblems, source.TableProblems, row.AddressedProblems, problemIDs)
		if err != nil {
			return nil, nil, err
		}
		orgSlugs, err := b.resolveAll(table, row.ID, schema.FieldProjectOrganizations, source.TableOrganizations, row.Organizations, organizationIDs)
		if err != nil {
			return nil, nil, err
		}

		names := make([]string, 0, len(orgSlugs))
		seen := make(map[string]struct{}, len(orgSlugs))
		for _, s := range orgSlugs {
			name := s
			if org, ok := organizations.Get(s); ok && org.Name != "" {
				name = org.Name
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}

		projects = append(projects, common.Project{
			Slug:              ids[row.ID],
			Name:              row.Name,
			Description:       row.Description,
			Status:            row.Status,
			Organizations:     names,
			AddressedProblems: addressed,
			Geography:         row.Geography,
			Funding:           row.Funding,
			Website:           row.Website,
		})
	}

	return NewCollection(func(p common.Project) string { return p.Slug }, projects), ids, nil
}

func (b *Builder) addIssues(table source.Table, issues []schema.Issue) {
	if len(issues) == 0 {
		return
	}
	b.report.Issues = append(b.report.Issues, issues...)
	schemaIssues.WithLabelValues(string(table)).Add(float64(len(issues)))
	logger.Debug("[Graph] Schema issues", "table", table, "count", len(issues))
}

// finish records the collisions of a resolver and returns its id map.
func (b *Builder) finish(table source.Table, resolver *slug.Resolver) slug.IDMap {
	if collisions := resolver.Collisions(); len(collisions) > 0 {
		b.report.Collisions[table] = append(b.report.Collisions[table], collisions...)
		slugCollisions.WithLabelValues(string(table)).Add(float64(len(collisions)))
		for _, c := range collisions {
			logger.Warn("[Graph] Slug collision", "table", table, "slug", c.Slug, "owner", c.Owner, "record", c.Record, "assigned", c.Assigned)
		}
	}
	return resolver.IDMap()
}

// resolveAll translates linked ids into slugs of the target table. Slugs
// are de-duplicated since colliding records may share one.
func (b *Builder) resolveAll(
	table source.Table,
	recordID string,
	field string,
	target source.Table,
	linked []string,
	ids slug.IDMap,
) ([]string, error) {
	out := make([]string, 0, len(linked))
	seen := make(map[string]struct{}, len(linked))
	for _, id := range linked {
		s, err := b.resolveOne(table, recordID, field, target, id, ids)
		if err != nil {
			return nil, err
		}
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// resolveOne translates a single linked id. An empty id resolves to "" and
// is not an error.
func (b *Builder) resolveOne(
	table source.Table,
	recordID string,
	field string,
	target source.Table,
	linked string,
	ids slug.IDMap,
) (string, error) {
	if linked == "" {
		return "", nil
	}
	if s, ok := ids.Lookup(linked); ok {
		return s, nil
	}

	if b.resolution == ResolveStrict {
		return "", fmt.Errorf("%w: %s/%s.%s links %s record %s", ErrUnresolvedReference, table, recordID, field, target, linked)
	}

	b.report.Dropped = append(b.report.Dropped, DroppedReference{
		Table:    table,
		RecordID: recordID,
		Field:    field,
		Target:   target,
		LinkedID: linked,
	})
	droppedReferences.WithLabelValues(string(table)).Inc()
	return "", nil
}
