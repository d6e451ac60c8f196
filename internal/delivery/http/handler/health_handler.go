package handler

import (
	"context"
	"time"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health endpoint probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	clients func() int
}

// NewHealthHandler probes every non-nil check. clients, when set, reports
// connected websocket subscribers.
func NewHealthHandler(checks map[string]Pinger, clients func() int) *HealthHandler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &HealthHandler{checks: live, clients: clients}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health reports 200 when every probe answers and 503 otherwise.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	out := dto.HealthResponse{Status: "ok", Checks: map[string]string{}}
	if h == nil {
		return response.Success(c, fiber.StatusOK, response.MessageOK, out)
	}

	ctx, cancel := context.WithTimeout(c.Context(), healthCheckTimeout)
	defer cancel()

	status := fiber.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			out.Checks[name] = err.Error()
			out.Status = "degraded"
			status = fiber.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}
	if h.clients != nil {
		out.WSClients = h.clients()
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, response.MessageServiceUnavailable, out)
	}
	return response.Success(c, status, response.MessageOK, out)
}
