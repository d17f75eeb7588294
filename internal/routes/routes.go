package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agriconnect/whatsapp-backend/internal/handlers"
	"github.com/agriconnect/whatsapp-backend/internal/middleware"
)

// Options holds everything SetupRoutes mounts.
type Options struct {
	WhatsApp  *handlers.WhatsAppHandler
	Products  *handlers.ProductHandler
	Health    *handlers.HealthHandler
	AppSecret string
	// EnableTestRoutes mounts POST /test/whatsapp.
	EnableTestRoutes bool
	// Gatherer backs /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, opts Options) {
	app.Get("/", opts.Health.Info)
	app.Get("/health", opts.Health.Check)

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	api := app.Group("/api")
	products := api.Group("/products")
	products.Get("/", opts.Products.List)
	products.Get("/:id", opts.Products.Get)

	// WhatsApp webhook
	webhook := app.Group("/webhook")
	webhook.Get("/whatsapp", opts.WhatsApp.VerifyWebhook)
	webhook.Post("/whatsapp", middleware.ValidateMetaSignature(opts.AppSecret), opts.WhatsApp.HandleWebhook)

	if opts.EnableTestRoutes {
		app.Post("/test/whatsapp", opts.WhatsApp.HandleTestWebhook)
	}
}
