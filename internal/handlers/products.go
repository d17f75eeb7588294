package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/internal/storage"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

const (
	defaultProductPage = 20
	maxProductPage     = 100
)

// ProductHandler serves read-only views of the product catalog
type ProductHandler struct {
	products storage.ProductReader
	logger   *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products storage.ProductReader, log *logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger.OrGlobal(log)}
}

// List returns available products with stock
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultProductPage)
	if limit <= 0 || limit > maxProductPage {
		limit = defaultProductPage
	}

	products, err := h.products.ListAvailableProducts(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Failed to fetch products")
	}

	return c.JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// Get returns one product with its farmer
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.GetProduct(c.UserContext(), c.Params("id"))
	if errors.Is(err, storage.ErrProductNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		h.logger.Error("failed to fetch product", zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Failed to fetch product")
	}
	return c.JSON(product)
}
