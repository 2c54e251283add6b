package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

type getEntityParams struct {
	Slug string `param:"slug" validate:"required"`
}

func entities(g *graph.Graph, kind common.EntityKind) any {
	switch kind {
	case common.KindOrganization:
		return g.Organizations.All()
	case common.KindWorldview:
		return g.Worldviews.All()
	case common.KindOutcome:
		return g.Outcomes.All()
	case common.KindProblemCategory:
		return g.ProblemCategories.All()
	case common.KindProblem:
		return g.Problems.All()
	case common.KindProject:
		return g.Projects.All()
	}
	return []any{}
}

// ListEntitiesHandler answers every entity of kind in load order.
func ListEntitiesHandler(kind common.EntityKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		g, err := currentGraph(c)
		if err != nil {
			return graphError(c, err)
		}
		return c.JSON(http.StatusOK, entities(g, kind))
	}
}

// GetEntityHandler answers a single entity of kind by slug.
func GetEntityHandler(kind common.EntityKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := new(getEntityParams)
		if err := c.Bind(params); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
		}
		if err := c.Validate(params); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
		}

		g, err := currentGraph(c)
		if err != nil {
			return graphError(c, err)
		}

		entity, ok := g.Entity(kind, params.Slug)
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return c.JSON(http.StatusOK, entity)
	}
}

// GetOutcomesHandler lists outcomes, optionally only those related to a
// worldview at the given relevance levels.
func GetOutcomesHandler(c echo.Context) error {
	type getOutcomesParams struct {
		Worldview string   `query:"worldview"`
		Relevance []string `query:"relevance" validate:"dive,oneof=High Medium Low high medium low"`
	}

	params := new(getOutcomesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	g, err := currentGraph(c)
	if err != nil {
		return graphError(c, err)
	}

	if params.Worldview == "" {
		return c.JSON(http.StatusOK, g.Outcomes.All())
	}
	if !g.Worldviews.Has(params.Worldview) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	levels := make([]common.RelevanceLevel, 0, len(params.Relevance))
	for _, raw := range params.Relevance {
		if l, ok := common.ParseRelevanceLevel(raw); ok {
			levels = append(levels, l)
		}
	}
	return c.JSON(http.StatusOK, g.OutcomesForWorldview(params.Worldview, levels...))
}
