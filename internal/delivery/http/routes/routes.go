package routes

import (
	"skillbridge/internal/delivery/http/handler"
	"skillbridge/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry holds every HTTP handler the server mounts. Nil handlers are
// skipped.
type Registry struct {
	Health   *handler.HealthHandler
	Analysis *handler.AnalysisHandler
	Jobs     *handler.JobsHandler
	WS       *ws.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if r == nil || app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	r.registerV1(api.Group("/v1"))
}

func (r *Registry) registerV1(v1 fiber.Router) {
	if r.Analysis != nil {
		r.Analysis.RegisterRoutes(v1)
	}
	if r.Jobs != nil {
		r.Jobs.RegisterRoutes(v1)
	}
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.WS != nil {
		app.Get("/ws/analyses", r.WS.HandleAnalysesWS)
	}
}
