package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a unique id so log lines from one request
// can be correlated. An incoming X-Request-Id is honored when present.
func RequestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("requestId", id)
	c.Set("X-Request-Id", id)
	return c.Next()
}
