package handlers

import (
	"ayuta/internal/middleware"
	"ayuta/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccountHandler handles HTTP requests for the account modal and profile page.
type AccountHandler struct {
	tabs   *services.TabRegistry
	logger *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(tabs *services.TabRegistry, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{tabs: tabs, logger: logger}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	account := router.Group("/account")
	account.Post("/register", h.HandleRegister)
	account.Post("/login", h.HandleLogin)
	account.Post("/logout", h.HandleLogout)
	account.Get("/prefill", h.HandlePrefill)

	router.Get("/profile", h.HandleProfile)
	router.Put("/profile", h.HandleUpdateProfile)
	router.Post("/demo/clear", h.HandleClearDemoData)
}

func (h *AccountHandler) account(c *fiber.Ctx) *services.AccountService {
	return h.tabs.Get(middleware.ClientID(c)).Account
}

// HandleRegister saves the profile and signs in.
func (h *AccountHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	account := h.account(c)
	status, err := account.Register(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusCreated, status, account.ProfileView())
}

// HandleUpdateProfile overwrites the profile.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	account := h.account(c)
	status, err := account.UpdateProfile(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, account.ProfileView())
}

// HandleLogin signs in with a known email.
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	account := h.account(c)
	status, err := account.Login(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, account.ProfileView())
}

// HandleLogout clears the session.
func (h *AccountHandler) HandleLogout(c *fiber.Ctx) error {
	account := h.account(c)
	status, err := account.Logout()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, account.ProfileView())
}

// HandlePrefill returns the account form prefill values.
func (h *AccountHandler) HandlePrefill(c *fiber.Ctx) error {
	return c.JSON(h.account(c).Prefill())
}

// HandleProfile returns the profile page.
func (h *AccountHandler) HandleProfile(c *fiber.Ctx) error {
	return c.JSON(h.account(c).ProfileView())
}

// HandleClearDemoData wipes the client's stored data. The body must confirm it.
func (h *AccountHandler) HandleClearDemoData(c *fiber.Ctx) error {
	var req services.ClearRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	account := h.account(c)
	status, err := account.ClearDemoData(req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondAction(c, fiber.StatusOK, status, nil)
}
