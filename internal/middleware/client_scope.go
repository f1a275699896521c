package middleware

import (
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ClientIDHeader names the workspace a request belongs to.
	ClientIDHeader = "X-Client-ID"
	// ClientCookie carries the client id for browsers that do not send the header.
	ClientCookie = "ayuta_client"

	clientIDLocal  = "client_id"
	cookieLifetime = 60 * 60 * 24 * 365
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ClientScope is a Fiber middleware that resolves the client id of every request.
// The header wins over the cookie. A request with neither is issued a fresh id,
// returned in both the header and the cookie.
func ClientScope(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		clientID := c.Get(ClientIDHeader)
		if clientID == "" {
			clientID = c.Cookies(ClientCookie)
		}

		if clientID == "" {
			clientID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     ClientCookie,
				Value:    clientID,
				MaxAge:   cookieLifetime,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			logger.Debug("issued client id", zap.String("client_id", clientID))
		} else if !clientIDPattern.MatchString(clientID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid client id",
				"status":  "error",
			})
		} else {
			// Header and cookie values alias the request buffer, which is reused
			// once the handler returns. The id outlives the request.
			clientID = utils.CopyString(clientID)
		}

		c.Set(ClientIDHeader, clientID)
		c.Locals(clientIDLocal, clientID)
		return c.Next()
	}
}

// ClientID returns the client id resolved by ClientScope, or "" outside it.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDLocal).(string)
	return id
}
