// Package middleware provides authentication and request instrumentation middleware.
package middleware

import (
	"errors"

	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionAuth enforces an authenticated session on protected routes.
// On success the resolved user ID is stored in c.Locals("userID").
func SessionAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		userID, err := sessions.UserID(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired session",
				})
			}
			Logger.ErrorContext(c.UserContext(), "session lookup failed", "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		c.Locals("userID", userID)
		c.Locals("sessionToken", token)
		return c.Next()
	}
}

// OptionalSessionAuth resolves the session if present but never rejects
// the request. Used by login to detect an already-authenticated caller.
func OptionalSessionAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token != "" {
			if userID, err := sessions.UserID(c.UserContext(), token); err == nil {
				c.Locals("userID", userID)
				c.Locals("sessionToken", token)
			}
		}
		return c.Next()
	}
}
