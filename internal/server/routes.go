package server

import (
	"github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/internal/server/routes"
	"github.com/OFFIS-RIT/pathways/backend/pkg/common"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api")
	apiRoutes.GET("/stats", routes.GetStatsHandler)

	// Entity routes
	apiRoutes.GET("/organizations", routes.ListEntitiesHandler(common.KindOrganization))
	apiRoutes.GET("/organizations/:slug", routes.GetEntityHandler(common.KindOrganization))
	apiRoutes.GET("/organizations/:slug/projects", routes.GetOrganizationProjectsHandler)
	apiRoutes.GET("/worldviews", routes.ListEntitiesHandler(common.KindWorldview))
	apiRoutes.GET("/worldviews/:slug", routes.GetEntityHandler(common.KindWorldview))
	apiRoutes.GET("/worldviews/:slug/outcomes", routes.GetWorldviewOutcomesHandler)
	apiRoutes.GET("/outcomes", routes.GetOutcomesHandler)
	apiRoutes.GET("/outcomes/:slug", routes.GetEntityHandler(common.KindOutcome))
	apiRoutes.GET("/outcomes/:slug/problems", routes.GetOutcomeProblemsHandler)
	apiRoutes.GET("/problem-categories", routes.ListEntitiesHandler(common.KindProblemCategory))
	apiRoutes.GET("/problem-categories/:slug", routes.GetEntityHandler(common.KindProblemCategory))
	apiRoutes.GET("/problem-categories/:slug/problems", routes.GetCategoryProblemsHandler)
	apiRoutes.GET("/problems", routes.ListEntitiesHandler(common.KindProblem))
	apiRoutes.GET("/problems/:slug", routes.GetEntityHandler(common.KindProblem))
	apiRoutes.GET("/problems/:slug/projects", routes.GetProblemProjectsHandler)
	apiRoutes.GET("/projects", routes.ListEntitiesHandler(common.KindProject))
	apiRoutes.GET("/projects/:slug", routes.GetEntityHandler(common.KindProject))

	// Aggregation routes
	apiRoutes.GET("/groups", routes.GetGroupViewsHandler)
	apiRoutes.GET("/groups/:view", routes.GetGroupsHandler)
	apiRoutes.GET("/heatmap", routes.GetHeatmapHandler)

	// Pathway routes
	apiRoutes.POST("/pathway", routes.PostPathwayHandler)

	// Admin routes
	adminRoutes := apiRoutes.Group("/admin", middleware.AuthMiddleware)
	adminRoutes.POST("/reload", routes.PostReloadHandler, middleware.RequirePermission(middleware.PermissionReload))
	adminRoutes.POST("/sync", routes.PostSyncHandler, middleware.RequirePermission(middleware.PermissionSync))
	adminRoutes.GET("/id-maps", routes.GetIDMapsHandler, middleware.RequirePermission(middleware.PermissionInspect))
	adminRoutes.GET("/report", routes.GetReportHandler, middleware.RequirePermission(middleware.PermissionInspect))
}
