package handlers

import (
	"ayuta/internal/middleware"
	"ayuta/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PagesHandler serves the read-only pages: orders, results, home summary and nav.
type PagesHandler struct {
	tabs    *services.TabRegistry
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(tabs *services.TabRegistry, catalog *services.CatalogService, logger *zap.Logger) *PagesHandler {
	return &PagesHandler{tabs: tabs, catalog: catalog, logger: logger}
}

// RegisterRoutes registers the page routes with the Fiber app.
func (h *PagesHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleOrders)
	router.Get("/results", h.HandleResults)
	router.Get("/home", h.HandleHome)
	router.Get("/nav", h.HandleNav)
	router.Get("/products", h.HandleProducts)
}

func (h *PagesHandler) tab(c *fiber.Ctx) *services.Tab {
	return h.tabs.Get(middleware.ClientID(c))
}

// HandleOrders returns the orders of the signed-in email.
func (h *PagesHandler) HandleOrders(c *fiber.Ctx) error {
	return c.JSON(h.tab(c).History.Orders())
}

// HandleResults returns the results of the signed-in email.
func (h *PagesHandler) HandleResults(c *fiber.Ctx) error {
	return c.JSON(h.tab(c).History.Results())
}

// HandleHome returns the home page basket summary.
func (h *PagesHandler) HandleHome(c *fiber.Ctx) error {
	return c.JSON(h.tab(c).Home.View())
}

// HandleNav returns the navigation bar state.
func (h *PagesHandler) HandleNav(c *fiber.Ctx) error {
	return c.JSON(h.tab(c).Nav.View())
}

// HandleProducts returns the catalog.
func (h *PagesHandler) HandleProducts(c *fiber.Ctx) error {
	products, err := h.catalog.GetAllProducts()
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}
