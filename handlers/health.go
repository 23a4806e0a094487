package handlers

import (
	"github.com/campusgate/admissions-api/database"
	"github.com/campusgate/admissions-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service and store liveness
type HealthHandler struct {
	store *database.GORMStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *database.GORMStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check answers the health probe. Store failures surface as 503 so load
// balancers stop routing here.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unreachable", "UNHEALTHY")
	}

	return response.Success(c, fiber.Map{"status": "ok"})
}
