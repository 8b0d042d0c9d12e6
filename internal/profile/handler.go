package profile

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/apperr"
)

// Handler exposes profile endpoints. Routes carrying it sit behind the
// session middleware, which stashes the authenticated user id in Locals.
type Handler struct {
	service *Service
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type setupRequest struct {
	FullName     string            `json:"fullName"`
	Phone        string            `json:"phone"`
	Gender       string            `json:"gender"`
	DateOfBirth  string            `json:"dateOfBirth"`
	Bio          string            `json:"bio"`
	ProfileImage string            `json:"profileImage"`
	SocialLinks  map[string]string `json:"social_links"`
}

type userPayload struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// Get returns the authenticated user with their profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	view, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(apperr.Status(err), apperr.MessageOf(err))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user":    viewUser(view),
		"profile": view.Profile,
	})
}

// Setup creates or updates the profile.
func (h *Handler) Setup(c *fiber.Ctx) error {
	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.Bio) > 500 {
		return fiber.NewError(http.StatusBadRequest, "Bio must be less than 500 characters")
	}

	uid, _ := c.Locals("user_id").(string)
	view, err := h.service.Setup(c.UserContext(), uid, SetupInput{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Gender:      req.Gender,
		DOB:         req.DateOfBirth,
		Bio:         req.Bio,
		AvatarURL:   req.ProfileImage,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		return fiber.NewError(apperr.Status(err), apperr.MessageOf(err))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    viewUser(view),
		"profile": view.Profile,
	})
}

func viewUser(view View) userPayload {
	p := userPayload{
		UserID:      view.User.ID,
		Email:       view.User.Email,
		PhoneNumber: view.User.PhoneNumber,
		Role:        view.User.Role,
		Status:      view.User.Status,
	}
	if !view.User.LastLoginAt.IsZero() {
		p.LastLoginAt = view.User.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return p
}
