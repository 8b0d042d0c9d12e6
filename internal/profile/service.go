package profile

import (
	"context"
	"errors"

	"github.com/ordoo/ordoo_backend/internal/apperr"
	"github.com/ordoo/ordoo_backend/internal/user"
)

// Service manages the profile attached to an account.
type Service struct {
	users    user.Repository
	profiles Repository
}

// NewService creates a profile service.
func NewService(users user.Repository, profiles Repository) *Service {
	return &Service{users: users, profiles: profiles}
}

// View pairs the account with its profile. Profile is zero-valued when the
// user never completed setup.
type View struct {
	User    user.User
	Profile Profile
}

// SetupInput captures the mutable profile fields. A non-empty Phone also
// updates the phone number on the user record.
type SetupInput struct {
	FullName    string
	Phone       string
	Gender      string
	DOB         string
	Bio         string
	AvatarURL   string
	SocialLinks map[string]string
}

// Get returns the account and profile for the user.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return View{}, apperr.New(apperr.NotFound, "User not found")
		}
		return View{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	p, err := s.profiles.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return View{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}
	return View{User: u, Profile: p}, nil
}

// Setup creates the profile on first call and updates it afterwards.
func (s *Service) Setup(ctx context.Context, userID string, input SetupInput) (View, error) {
	if input.Phone != "" {
		if err := s.users.UpdatePhone(ctx, userID, input.Phone); err != nil {
			if errors.Is(err, user.ErrDuplicate) {
				return View{}, apperr.New(apperr.Conflict, "Phone number already exists")
			}
			return View{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
		}
	}

	p := Profile{
		UserID:      userID,
		FullName:    input.FullName,
		Gender:      input.Gender,
		DOB:         input.DOB,
		Bio:         input.Bio,
		AvatarURL:   input.AvatarURL,
		SocialLinks: input.SocialLinks,
	}

	_, err := s.profiles.FindByUser(ctx, userID)
	switch {
	case err == nil:
		err = s.profiles.Update(ctx, p)
	case errors.Is(err, ErrNotFound):
		err = s.profiles.Create(ctx, p)
	}
	if err != nil {
		return View{}, apperr.Wrap(apperr.Unexpected, "Server error", err)
	}

	return s.Get(ctx, userID)
}
