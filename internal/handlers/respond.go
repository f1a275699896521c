package handlers

import (
	"ayuta/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// actionResponse is the body returned by every state-changing route:
// the status line plus the page re-rendered after the change.
type actionResponse struct {
	services.Status
	View any `json:"view,omitempty"`
}

func respondAction(c *fiber.Ctx, code int, status services.Status, view any) error {
	return c.Status(code).JSON(actionResponse{Status: status, View: view})
}

// respondError maps a refused action to its HTTP status.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	ae, ok := services.AsActionError(err)
	if !ok {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"status":  services.StatusError,
			"error":   err.Error(),
		})
	}

	code := fiber.StatusInternalServerError
	switch ae.Kind {
	case services.KindValidation:
		code = fiber.StatusUnprocessableEntity
	case services.KindLookup:
		code = fiber.StatusNotFound
	case services.KindGateway:
		code = fiber.StatusPaymentRequired
	case services.KindConflict:
		code = fiber.StatusConflict
	}
	logger.Debug("action refused",
		zap.String("path", c.Path()),
		zap.Stringer("kind", ae.Kind),
		zap.Error(err))
	return c.Status(code).JSON(ae.Status())
}

func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"status":  services.StatusError,
		"error":   err.Error(),
	})
}
