package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/pathways/backend/internal/queue"
	"github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

func PostReloadHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	user := c.(*middleware.AppContext).User

	g, err := app.Store.Reload(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Reload failed", "user", user.UserID, "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Reload failed: " + err.Error()})
	}

	logger.Info("[Server] Graph reloaded", "user", user.UserID)
	return c.JSON(http.StatusOK, g.Stats())
}

func PostSyncHandler(c echo.Context) error {
	type postSyncBody struct {
		Message string `json:"message"`
		Archive bool   `json:"archive"`
	}

	body := new(postSyncBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	user := c.(*middleware.AppContext).User
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Message queue not configured"})
	}

	job, err := queue.NewSnapshotJob(body.Message, user.UserID, body.Archive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := queue.EnqueueSnapshotJob(app.Queue, job); err != nil {
		logger.Error("[Server] Failed to enqueue snapshot job", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to enqueue snapshot job"})
	}

	logger.Info("[Server] Snapshot job enqueued", "correlation_id", job.CorrelationID, "user", user.UserID)
	return c.JSON(http.StatusAccepted, job)
}

func GetIDMapsHandler(c echo.Context) error {
	g, err := currentGraph(c)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, g.IDMaps)
}

func GetReportHandler(c echo.Context) error {
	g, err := currentGraph(c)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, g.Report)
}
