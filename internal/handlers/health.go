package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/whatsapp-backend/internal/storage"
)

// Pinger checks a dependency, typically the database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Storage  string
	Provider string
	sessions storage.SessionCounter
	db       Pinger
}

// NewHealthHandler creates a new health handler. sessions and db may be nil.
func NewHealthHandler(version, storageType, provider string, sessions storage.SessionCounter, db Pinger) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Storage:  storageType,
		Provider: provider,
		sessions: sessions,
		db:       db,
	}
}

// Info returns service details including the number of live conversations
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	response := fiber.Map{
		"service": "AgriConnect WhatsApp Backend",
		"version": h.Version,
		"status":  "healthy",
		"storage": h.Storage,
		"whatsapp": fiber.Map{
			"provider": h.Provider,
		},
		"endpoints": fiber.Map{
			"health":   "/health",
			"webhook":  "/webhook/whatsapp",
			"products": "/api/products",
			"metrics":  "/metrics",
		},
	}

	if h.sessions != nil {
		if n, err := h.sessions.Count(c.UserContext()); err == nil {
			response["sessions"] = n
		}
	}
	return c.JSON(response)
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK
	dbHealthy := true

	if h.db != nil {
		if err := h.db.PingContext(c.UserContext()); err != nil {
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
			dbHealthy = false
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"services": fiber.Map{
			"database": dbHealthy,
			"whatsapp": h.Provider != "log",
		},
	})
}
