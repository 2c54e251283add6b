package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

func currentGraph(c echo.Context) (*graph.Graph, error) {
	return c.(*middleware.AppContext).App.Store.Current()
}

func graphError(c echo.Context, err error) error {
	if errors.Is(err, store.ErrNotLoaded) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Graph not loaded"})
	}
	logger.Error("[Server] Failed to read graph", "err", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func GetStatsHandler(c echo.Context) error {
	g, err := currentGraph(c)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, g.Stats())
}
