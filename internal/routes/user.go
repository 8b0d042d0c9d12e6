package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/profile"
)

// RegisterUserRoutes wires profile endpoints behind session auth.
func RegisterUserRoutes(r fiber.Router, h *profile.Handler, sessionAuth fiber.Handler) {
	group := r.Group("/user", sessionAuth)
	group.Get("/profile", h.Get)
	group.Put("/profile/setup", h.Setup)
}
