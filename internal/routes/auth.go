package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/auth"
)

// RegisterAuthRoutes wires authentication and credential lifecycle endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, sessionAuth fiber.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/signup", h.Signup)
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/send-otp", rateLimiter, h.SendOTP)
	group.Post("/verify-otp", h.VerifyOTP)
	group.Post("/forgot-password", h.ForgotPassword)
	group.Post("/validate-reset-token", h.ValidateResetToken)
	group.Post("/reset-password", h.ResetPassword)
	group.Post("/logout", sessionAuth, h.Logout)
}
