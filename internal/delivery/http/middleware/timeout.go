package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RequestTimeout bounds the context handed to usecases. d <= 0 disables it.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.Context(), d)
		defer cancel()
		c.SetContext(ctx)

		err := c.Next()
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewAppError(fiber.StatusRequestTimeout, "Request timed out", nil, err)
		}
		return err
	}
}
