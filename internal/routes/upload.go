package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/media"
	"github.com/ordoo/ordoo_backend/internal/middleware"
)

// RegisterUploadRoutes wires media upload endpoints behind session auth.
func RegisterUploadRoutes(r fiber.Router, h *media.Handler, sessionAuth fiber.Handler, d Deps) {
	if d.Cache != nil {
		idem := middleware.Idempotency(d.Cache, 10*time.Minute, d.Logger)
		r.Post("/upload", sessionAuth, idem, h.UploadSingle)
		r.Post("/upload-chunk", sessionAuth, idem, h.UploadChunk)
		return
	}
	r.Post("/upload", sessionAuth, h.UploadSingle)
	r.Post("/upload-chunk", sessionAuth, h.UploadChunk)
}
