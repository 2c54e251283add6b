package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

// relationHandler answers related of the entity of kind named by the slug
// path parameter, or 404 when that entity does not exist.
func relationHandler[T any](kind common.EntityKind, related func(g *graph.Graph, slug string) []T) echo.HandlerFunc {
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
		if _, ok := g.Entity(kind, params.Slug); !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}

		items := related(g, params.Slug)
		if items == nil {
			items = []T{}
		}
		return c.JSON(http.StatusOK, items)
	}
}

var GetOutcomeProblemsHandler = relationHandler(common.KindOutcome, (*graph.Graph).ProblemsAffecting)

var GetProblemProjectsHandler = relationHandler(common.KindProblem, (*graph.Graph).ProjectsAddressing)

var GetCategoryProblemsHandler = relationHandler(common.KindProblemCategory, (*graph.Graph).ProblemsInCategory)

var GetWorldviewOutcomesHandler = relationHandler(common.KindWorldview, func(g *graph.Graph, slug string) []common.Outcome {
	return g.OutcomesForWorldview(slug)
})

var GetOrganizationProjectsHandler = relationHandler(common.KindOrganization, (*graph.Graph).ProjectsForOrganization)
