package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"skillbridge/internal/config"
	"skillbridge/internal/delivery/http/handler"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/delivery/http/routes"
	"skillbridge/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Hub       *ws.Hub
	Container *Container
}

// New assembles the HTTP app around an already built container.
func New(cfg config.Config, c *Container, hub *ws.Hub) *App {
	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: cfg.App.MaxUploadBytes + multipartOverhead,
	})

	registerGlobalMiddleware(f, cfg, c.Logger)
	registerRoutes(f, cfg, c, hub)

	return &App{Fiber: f, Hub: hub, Container: c}
}

// multipartOverhead leaves room for form boundaries and the jobId field.
const multipartOverhead = 64 << 10

// Bootstrap builds the container, the websocket hub and the HTTP app. The
// returned cleanup releases the container; the caller runs the hub.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.Default()
	hub := ws.NewHub(logger)

	c, err := NewContainer(context.Background(), cfg, Options{
		Logger:   logger,
		Notifier: ws.NewNotifier(hub),
	})
	if err != nil {
		return nil, nil, err
	}

	app := New(cfg, c, hub)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, cfg config.Config, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
	app.Use(middleware.RequestTimeout(cfg.App.RequestTimeout))
}

func registerRoutes(app *fiber.App, cfg config.Config, c *Container, hub *ws.Hub) {
	if app == nil || c == nil {
		return
	}

	checks := map[string]handler.Pinger{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Cache != nil && c.Cache.Available() {
		checks["cache"] = c.Cache
	}

	reg := &routes.Registry{
		Analysis: handler.NewAnalysisHandler(c.Analysis, cfg.App.UploadDir, int64(cfg.App.MaxUploadBytes)),
		Jobs:     handler.NewJobsHandler(c.JobList),
	}
	if hub != nil {
		reg.Health = handler.NewHealthHandler(checks, hub.ClientCount)
		reg.WS = ws.NewHandler(hub, c.Logger)
	} else {
		reg.Health = handler.NewHealthHandler(checks, nil)
	}
	reg.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
