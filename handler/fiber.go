package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Fiber serves the extension as a fiber route handler:
//
//	app.Post("/", h.Fiber)
func (h *Handler) Fiber(c *fiber.Ctx) error {
	corrID := correlationID(func(name string) string { return c.Get(name) })

	body := append([]byte(nil), c.Body()...)
	res := h.serve(c.UserContext(), body, corrID)

	for k, v := range res.Header {
		c.Set(k, v)
	}
	c.Status(res.StatusCode)
	if len(res.Body) == 0 {
		return nil
	}
	return c.Send(res.Body)
}
