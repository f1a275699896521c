package handlers

import (
	"ayuta/internal/middleware"
	"ayuta/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShopHandler handles HTTP requests for the shop page: goal, cart and checkout.
type ShopHandler struct {
	tabs   *services.TabRegistry
	logger *zap.Logger
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(tabs *services.TabRegistry, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{tabs: tabs, logger: logger}
}

// RegisterRoutes registers the shop routes with the Fiber app.
func (h *ShopHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shop", h.HandleView)
	router.Post("/shop/goal", h.HandleSetGoal)

	cart := router.Group("/cart")
	cart.Post("/items", h.HandleAddItem)
	cart.Post("/items/:id/toggle", h.HandleToggleItem)
	cart.Post("/items/:id/decrement", h.HandleDecrementItem)
	cart.Delete("/items/:id", h.HandleRemoveItem)
	router.Delete("/cart", h.HandleClearCart)

	router.Post("/checkout", h.HandleCheckout)
}

func (h *ShopHandler) tab(c *fiber.Ctx) *services.Tab {
	return h.tabs.Get(middleware.ClientID(c))
}

// HandleView returns the shop page.
func (h *ShopHandler) HandleView(c *fiber.Ctx) error {
	return c.JSON(h.tab(c).Shop.View())
}

// HandleSetGoal selects the goal filter.
func (h *ShopHandler) HandleSetGoal(c *fiber.Ctx) error {
	var req services.GoalRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	shop := h.tab(c).Shop
	status, err := shop.SetGoal(req.Goal)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleToggleItem adds the product if absent, else removes it.
func (h *ShopHandler) HandleToggleItem(c *fiber.Ctx) error {
	shop := h.tab(c).Shop
	status, err := shop.ToggleCartItem(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleAddItem adds a quantity of a product.
func (h *ShopHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	shop := h.tab(c).Shop
	status, err := shop.AddToCart(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleDecrementItem lowers a row's quantity by one.
func (h *ShopHandler) HandleDecrementItem(c *fiber.Ctx) error {
	shop := h.tab(c).Shop
	status, err := shop.DecrementCartItem(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleRemoveItem drops a row from the basket.
func (h *ShopHandler) HandleRemoveItem(c *fiber.Ctx) error {
	shop := h.tab(c).Shop
	status, err := shop.RemoveCartItem(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleClearCart empties the basket.
func (h *ShopHandler) HandleClearCart(c *fiber.Ctx) error {
	shop := h.tab(c).Shop
	status, err := shop.ClearCart()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, shop.View())
}

// HandleCheckout pays for the basket and records the order.
func (h *ShopHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	shop := h.tab(c).Shop
	order, status, err := shop.Checkout(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": status.Message,
		"status":  status.Kind,
		"unsaved": status.Unsaved,
		"order":   order,
		"view":    shop.View(),
	})
}
