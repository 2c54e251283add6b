package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/pkg/pathway"
	"github.com/OFFIS-RIT/pathways/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

type pathwayToggle struct {
	Stage string `json:"stage" validate:"required"`
	Slug  string `json:"slug" validate:"required"`
}

type postPathwayBody struct {
	pathway.Selection
	Toggle *pathwayToggle `json:"toggle"`
	Clear  bool           `json:"clear"`
}

// PostPathwayHandler restores the posted selection, applies an optional
// clear and toggle, and answers the evaluated state.
func PostPathwayHandler(c echo.Context) error {
	body := new(postPathwayBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	state, err := pathway.Restore(body.Selection)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if body.Clear {
		state = state.ClearAll()
	}
	if body.Toggle != nil {
		stage, err := pathway.ParseStage(body.Toggle.Stage)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		state = state.Toggle(stage, body.Toggle.Slug)
	}

	explorer, err := c.(*middleware.AppContext).App.Store.Explorer()
	if errors.Is(err, store.ErrNotLoaded) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Graph not loaded"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, explorer.Evaluate(state))
}
