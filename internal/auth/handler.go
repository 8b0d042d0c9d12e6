package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ordoo/ordoo_backend/internal/apperr"
)

// Handler exposes the credential lifecycle endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	IsSSO       bool   `json:"isSso"`
	Provider    string `json:"provider"`
	UID         string `json:"uid"`
	Name        string `json:"name"`
	PhotoURL    string `json:"photoURL"`
	OTP         string `json:"otp"`
}

type userPayload struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role"`
}

type sessionResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
	Profile any         `json:"profile"`
}

func (r credentialRequest) credentials() Credentials {
	return Credentials{
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
		SSO:         r.IsSSO,
		Provider:    r.Provider,
		UID:         r.UID,
		Name:        r.Name,
		PhotoURL:    r.PhotoURL,
	}
}

func sessionPayload(message string, session Session) sessionResponse {
	return sessionResponse{
		Message: message,
		Token:   session.Token,
		User: userPayload{
			UserID:      session.User.ID,
			Email:       session.User.Email,
			PhoneNumber: session.User.PhoneNumber,
			Role:        session.User.Role,
		},
		Profile: session.Profile,
	}
}

func httpError(err error) error {
	return fiber.NewError(apperr.Status(err), apperr.MessageOf(err))
}

// Signup registers an account, password or SSO path, and returns its first
// session token.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.service.Signup(c.UserContext(), req.credentials())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(sessionPayload("User created successfully", session))
}

// Login authenticates and returns a fresh session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.service.Login(c.UserContext(), req.credentials())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionPayload("Login successful", session))
}

// Logout clears the stored session. Requires a valid session upstream.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "Invalid token.")
	}
	if err := h.service.Logout(c.UserContext(), uid); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logout successful"})
}

// SendOTP issues and dispatches a fresh one-time code.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SendOTP(c.UserContext(), req.Email, req.PhoneNumber); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OTP sent successfully"})
}

// VerifyOTP consumes the pending code and logs the user in.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req credentialRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.OTP) != 6 {
		return fiber.NewError(http.StatusBadRequest, "OTP must be 6 digits")
	}
	session, err := h.service.VerifyOTP(c.UserContext(), req.Email, req.PhoneNumber, req.OTP)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionPayload("OTP verified successfully", session))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword creates a reset request and mails the link.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "Please provide a valid email")
	}
	if err := h.service.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password reset email sent"})
}

type resetTokenRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ValidateResetToken probes a reset token without consuming it.
func (h *Handler) ValidateResetToken(c *fiber.Ctx) error {
	var req resetTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "Reset token is required")
	}
	if err := h.service.ValidateResetToken(c.UserContext(), req.Token); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Token is valid"})
}

// ResetPassword redeems the token and sets the new password.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "Reset token is required")
	}
	if err := h.service.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password reset successfully"})
}
