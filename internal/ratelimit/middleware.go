package ratelimit

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ClientKey identifies the caller for rate limiting. Fiber resolves the
// address through the app's ProxyHeader when one is configured.
func ClientKey(c *fiber.Ctx) string {
	return c.IP()
}

// New returns middleware enforcing the store's fixed windows. Mount it on the
// provider-facing prefix only; health and info endpoints stay unlimited.
func New(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := store.Admit(ClientKey(c))

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(d.ResetSeconds()))

		if !d.Allowed {
			retry := d.RetrySeconds()
			c.Set("Retry-After", strconv.Itoa(retry))
			log.Printf("ratelimit: rejected %s %s %s (%d per window used)", ClientKey(c), c.Method(), c.Path(), d.Used)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Too many requests, please try again later.",
				"retryAfter": retry,
			})
		}

		return c.Next()
	}
}
