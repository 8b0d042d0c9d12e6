package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ordoo/ordoo_backend/internal/apperr"
	"github.com/ordoo/ordoo_backend/internal/config"
	"github.com/ordoo/ordoo_backend/internal/notification"
	"github.com/ordoo/ordoo_backend/internal/passwordreset"
	"github.com/ordoo/ordoo_backend/internal/profile"
	"github.com/ordoo/ordoo_backend/internal/token"
	"github.com/ordoo/ordoo_backend/internal/user"
)

// Service drives the credential lifecycle: signup, login, logout, OTP
// verification and the password-reset flow. Every operation is a synchronous
// read-modify-write against the stores; no state lives in the service itself.
type Service struct {
	users    user.Repository
	profiles profile.Repository
	resets   passwordreset.Repository
	tokens   *token.Manager
	notifier notification.Notifier

	bcryptCost  int
	otpTTL      time.Duration
	resetTTL    time.Duration
	frontendURL string
}

// NewService wires the credential lifecycle service.
func NewService(cfg config.Config, users user.Repository, profiles profile.Repository,
	resets passwordreset.Repository, tokens *token.Manager, notifier notification.Notifier) *Service {
	return &Service{
		users:       users,
		profiles:    profiles,
		resets:      resets,
		tokens:      tokens,
		notifier:    notifier,
		bcryptCost:  cfg.BcryptCost,
		otpTTL:      cfg.OTPTTL,
		resetTTL:    cfg.ResetTokenTTL,
		frontendURL: cfg.FrontendURL,
	}
}

// Credentials carries the identifier plus either a password or an SSO
// assertion from the request layer.
type Credentials struct {
	Email       string
	PhoneNumber string
	Password    string

	SSO      bool
	Provider string
	UID      string
	Name     string
	PhotoURL string
}

// Session is the result of any operation that logs the user in.
type Session struct {
	Token   string
	User    user.User
	Profile profile.Profile
}

// Signup registers an account and immediately issues its first session.
// Password signups hash the password before anything is persisted; SSO
// signups skip the password entirely and seed a profile from the provider
// data. A duplicate identifier is a conflict, also for cross-provider
// collisions (reject, never merge).
func (s *Service) Signup(ctx context.Context, creds Credentials) (Session, error) {
	if err := s.validateSignup(creds); err != nil {
		return Session{}, err
	}

	if _, err := s.lookup(ctx, creds.Email, creds.PhoneNumber); err == nil {
		return Session{}, apperr.New(apperr.Conflict, "Email already exists")
	} else if !errors.Is(err, user.ErrNotFound) {
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	u := user.User{
		ID:          uuid.NewString(),
		Email:       creds.Email,
		PhoneNumber: creds.PhoneNumber,
		Role:        user.RoleUser,
		Status:      user.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}
	if creds.SSO {
		u.SSOProvider = creds.Provider
		u.SSOUID = creds.UID
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
		if err != nil {
			return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return Session{}, apperr.New(apperr.Conflict, "Email already exists")
		}
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	var p profile.Profile
	if creds.SSO {
		p = profile.Profile{UserID: u.ID, FullName: creds.Name, AvatarURL: creds.PhotoURL}
		if err := s.profiles.Create(ctx, p); err != nil {
			return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
		}
	}

	tok, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, User: u, Profile: p}, nil
}

// Login authenticates by password or SSO assertion and issues a fresh
// session, replacing whatever token was live. The SSO path never creates an
// account.
func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	u, err := s.lookup(ctx, creds.Email, creds.PhoneNumber)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, apperr.New(apperr.NotFound, "User not found")
		}
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	if !creds.SSO {
		if len(u.PasswordHash) == 0 ||
			bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)) != nil {
			return Session{}, apperr.New(apperr.Unauthorized, "Invalid password")
		}
	}

	if u.Status != user.StatusActive {
		return Session{}, apperr.New(apperr.Forbidden, "Account is inactive or banned")
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	tok, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}

	p, err := s.profiles.FindByUser(ctx, u.ID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return Session{Token: tok, User: u, Profile: p}, nil
}

// Logout drops the stored session pair. Calling it again after the session is
// gone is not an error at this layer; the session middleware already rejects
// the stale token upstream.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearSession(ctx, userID); err != nil && !errors.Is(err, user.ErrNotFound) {
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return nil
}

// SendOTP issues a fresh one-time code for the account, replacing any pending
// one, and dispatches it. The code is written before dispatch, so a delivery
// failure leaves a valid pending OTP behind.
func (s *Service) SendOTP(ctx context.Context, email, phone string) error {
	u, err := s.lookup(ctx, email, phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	code, err := token.NewOTP()
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send OTP", err)
	}
	if err := s.users.UpdateOTP(ctx, u.ID, code, time.Now().Add(s.otpTTL)); err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send OTP", err)
	}

	if email != "" {
		if err := s.notifier.Send(ctx, notification.OTPMessage(email, code)); err != nil {
			return apperr.Wrap(apperr.Unexpected, "Failed to send OTP", err)
		}
	}
	return nil
}

// VerifyOTP consumes the pending code and logs the user in. The consume is a
// single conditional swap, so a mismatched or expired code leaves the stored
// pair untouched and the caller may retry until expiry.
func (s *Service) VerifyOTP(ctx context.Context, email, phone, code string) (Session, error) {
	u, err := s.lookup(ctx, email, phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, apperr.New(apperr.NotFound, "User not found")
		}
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	consumed, err := s.users.ConsumeOTP(ctx, u.ID, code)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	if !consumed {
		return Session{}, apperr.New(apperr.Validation, "Invalid or expired OTP")
	}

	if u.Status != user.StatusActive {
		return Session{}, apperr.New(apperr.Forbidden, "Account is inactive or banned")
	}

	// A consumed OTP proves control of the contact point. A missing profile
	// row is fine; password signups have none until setup.
	markVerified := s.profiles.SetEmailVerified
	if email == "" {
		markVerified = s.profiles.SetPhoneVerified
	}
	if err := markVerified(ctx, u.ID); err != nil && !errors.Is(err, profile.ErrNotFound) {
		return Session{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	tok, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, User: u}, nil
}

// ForgotPassword creates a reset request and mails the link. Prior unused
// requests stay valid; each is independently redeemable until used or
// expired.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	resetToken, err := token.NewResetToken()
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send reset email", err)
	}
	req := passwordreset.ResetRequest{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(s.resetTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.resets.Create(ctx, req); err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send reset email", err)
	}

	msg := notification.PasswordResetMessage(email, s.frontendURL, resetToken)
	if err := s.notifier.Send(ctx, msg); err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to send reset email", err)
	}
	return nil
}

// ValidateResetToken is a read-only probe used by clients to decide whether
// to show the reset form.
func (s *Service) ValidateResetToken(ctx context.Context, resetToken string) error {
	_, err := s.resets.FindValid(ctx, resetToken)
	if err != nil {
		if errors.Is(err, passwordreset.ErrNotFound) {
			return apperr.New(apperr.Validation, "Invalid or expired reset token")
		}
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return nil
}

// ResetPassword redeems the token and overwrites the password hash. The
// redemption happens first and is atomic: of two concurrent calls with the
// same token exactly one reaches the password write.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "Password must be at least 6 characters")
	}

	req, err := s.resets.Redeem(ctx, resetToken)
	if err != nil {
		if errors.Is(err, passwordreset.ErrNotFound) {
			return apperr.New(apperr.Validation, "Invalid or expired reset token")
		}
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	if err := s.users.UpdatePassword(ctx, req.UserID, hash); err != nil {
		return apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return nil
}

func (s *Service) validateSignup(creds Credentials) error {
	if creds.Email == "" && creds.PhoneNumber == "" {
		return apperr.New(apperr.Validation, "Email or phone number is required")
	}
	if creds.SSO {
		if creds.Email == "" || creds.Provider == "" || creds.UID == "" {
			return apperr.New(apperr.Validation, "SSO signup requires email, provider and uid")
		}
		return nil
	}
	if len(creds.Password) < 6 {
		return apperr.New(apperr.Validation, "Password must be at least 6 characters")
	}
	return nil
}

// lookup resolves the account by whichever identifier is present, email
// first.
func (s *Service) lookup(ctx context.Context, email, phone string) (user.User, error) {
	if email != "" {
		return s.users.FindByEmail(ctx, email)
	}
	if phone != "" {
		return s.users.FindByPhone(ctx, phone)
	}
	return user.User{}, user.ErrNotFound
}

// issueSession signs a token and stores it as the single current session.
// Concurrent logins race last-writer-wins; the loser's token simply fails the
// next store check.
func (s *Service) issueSession(ctx context.Context, userID string) (string, error) {
	tok, exp, err := s.tokens.Issue(userID)
	if err != nil {
		return "", apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	if err := s.users.UpdateSession(ctx, userID, tok, exp); err != nil {
		return "", apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return tok, nil
}
