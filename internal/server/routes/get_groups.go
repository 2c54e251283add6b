package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/pkg/aggregate"

	"github.com/labstack/echo/v4"
)

func GetGroupViewsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, aggregate.Views)
}

func GetGroupsHandler(c echo.Context) error {
	type getGroupsParams struct {
		View     string `param:"view" validate:"required"`
		Top      int    `query:"top" validate:"min=0"`
		Fallback string `query:"fallback"`
	}

	params := new(getGroupsParams)
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

	var opts []aggregate.Option
	if params.Fallback != "" {
		opts = append(opts, aggregate.WithFallback(params.Fallback))
	}

	groups, err := aggregate.GroupView(g, params.View, params.Top, opts...)
	if errors.Is(err, aggregate.ErrUnknownView) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown view " + params.View})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, groups)
}

func GetHeatmapHandler(c echo.Context) error {
	type getHeatmapParams struct {
		Rows     int    `query:"rows" validate:"min=0,max=100"`
		Cols     int    `query:"cols" validate:"min=0,max=100"`
		Fallback string `query:"fallback"`
	}

	params := &getHeatmapParams{Rows: 10, Cols: 10}
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

	var opts []aggregate.Option
	if params.Fallback != "" {
		opts = append(opts, aggregate.WithFallback(params.Fallback))
	}

	return c.JSON(http.StatusOK, aggregate.RoleByCountry(g, params.Rows, params.Cols, opts...))
}
