package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"
	"github.com/mostovoy/agency-directory/app/dto"
)

// RequireAPIKey gates the admin surface behind a static API key header.
// Authentication proper lives outside this service; this is only an
// operational latch for the rebuild and scoring endpoints.
func RequireAPIKey(header, key string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		provided := c.Get(header)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid or missing API key",
				Error:   dto.ErrorDetail{Code: "INVALID_API_KEY"},
			})
		}

		return c.Next()
	}
}
