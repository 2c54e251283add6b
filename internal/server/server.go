package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/bootstrap"
	"github.com/OFFIS-RIT/pathways/backend/internal/queue"
	mid "github.com/OFFIS-RIT/pathways/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New creates the echo app serving app.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphStore, closeSource, err := bootstrap.NewGraphStore(ctx)
	if err != nil {
		logger.Fatal("Failed to create graph store", "err", err)
	}
	defer closeSource()

	// The server starts without a graph and answers 503 until a load succeeds.
	if _, err := graphStore.Reload(ctx); err != nil {
		logger.Error("Initial graph load failed", "err", err)
	}

	app := &mid.App{
		Store:        graphStore,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = k.Keyfunc
	}

	if queue.Enabled() {
		que, err := queue.Init()
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer que.Close()

		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, queue.Queues); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch

		subCh, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open subscriber channel", "err", err)
		}
		defer subCh.Close()
		deliveries, err := queue.SubscribeTopic(subCh, queue.ReloadTopic)
		if err != nil {
			logger.Fatal("Failed to subscribe to reloads", "err", err)
		}
		go queue.ListenForReloads(ctx, deliveries, graphStore)
	} else {
		logger.Warn("RABBITMQ_HOST not set, snapshot sync and reload broadcasts are disabled")
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
