package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/token"
	"github.com/ordoo/ordoo_backend/internal/user"
)

// SessionAuth validates bearer session tokens. A token authorizes a request
// only when its signature and embedded expiry verify AND it exactly matches
// the single session token currently stored for the user AND the stored
// expiry has not passed AND the account is active. The store lookup is what
// lets logout and re-login revoke tokens before their natural expiry; the
// signature alone cannot.
//
// Every token failure surfaces as the same 401 so callers cannot distinguish
// a bad signature from a revoked session. An inactive or banned account is
// the one exception and yields 403.
func SessionAuth(tokens *token.Manager, repo user.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "Access denied. No token provided.")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		sub, err := tokens.Parse(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token.")
		}

		u, err := repo.FindByID(c.UserContext(), sub)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token.")
		}
		if u.SessionToken != tokenStr || !u.HasLiveSession(time.Now()) {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token.")
		}
		if u.Status != user.StatusActive {
			return fiber.NewError(http.StatusForbidden, "Account is inactive or banned.")
		}

		c.Locals("user_id", u.ID)
		c.Locals("user", u)
		return c.Next()
	}
}
