package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ordoo/ordoo_backend/internal/apperr"
	"github.com/ordoo/ordoo_backend/internal/user"
)

func newTestService(t *testing.T) (*Service, user.Repository, Repository) {
	t.Helper()
	users := user.NewMemoryRepository()
	profiles := NewMemoryRepository()
	return NewService(users, profiles), users, profiles
}

func seedUser(t *testing.T, users user.Repository, email, phone string) user.User {
	t.Helper()
	u := user.User{
		ID:          uuid.NewString(),
		Email:       email,
		PhoneNumber: phone,
		Role:        user.RoleUser,
		Status:      user.StatusActive,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestGetReturnsEmptyProfileBeforeSetup(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "bare@example.com", "")

	view, err := svc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.User.Email != "bare@example.com" {
		t.Fatalf("user email = %q", view.User.Email)
	}
	if view.Profile.FullName != "" || view.Profile.AvatarURL != "" {
		t.Fatalf("expected zero profile, got %+v", view.Profile)
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.NewString())
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestSetupCreatesThenUpdates(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "setup@example.com", "")

	view, err := svc.Setup(context.Background(), u.ID, SetupInput{
		FullName:    "Ada Lovelace",
		Gender:      "female",
		Bio:         "first programmer",
		SocialLinks: map[string]string{"x": "https://x.com/ada"},
	})
	if err != nil {
		t.Fatalf("first setup: %v", err)
	}
	if view.Profile.FullName != "Ada Lovelace" {
		t.Fatalf("full name = %q", view.Profile.FullName)
	}

	view, err = svc.Setup(context.Background(), u.ID, SetupInput{
		FullName:  "Ada King",
		AvatarURL: "https://cdn.example.com/ada.png",
	})
	if err != nil {
		t.Fatalf("second setup: %v", err)
	}
	if view.Profile.FullName != "Ada King" {
		t.Fatalf("updated full name = %q", view.Profile.FullName)
	}
	if view.Profile.AvatarURL != "https://cdn.example.com/ada.png" {
		t.Fatalf("avatar = %q", view.Profile.AvatarURL)
	}
}

func TestSetupUpdatePreservesVerifiedFlags(t *testing.T) {
	svc, users, profiles := newTestService(t)
	u := seedUser(t, users, "verified@example.com", "")

	if _, err := svc.Setup(context.Background(), u.ID, SetupInput{FullName: "V"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := profiles.SetEmailVerified(context.Background(), u.ID); err != nil {
		t.Fatalf("set verified: %v", err)
	}

	view, err := svc.Setup(context.Background(), u.ID, SetupInput{FullName: "V2"})
	if err != nil {
		t.Fatalf("second setup: %v", err)
	}
	if !view.Profile.EmailVerified {
		t.Fatal("email verified flag lost on update")
	}
}

func TestSetupPhoneUpdatesUserRecord(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := seedUser(t, users, "phone@example.com", "")

	if _, err := svc.Setup(context.Background(), u.ID, SetupInput{Phone: "+15550001"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	got, err := users.FindByPhone(context.Background(), "+15550001")
	if err != nil {
		t.Fatalf("find by phone: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("phone attached to %q, want %q", got.ID, u.ID)
	}
}

func TestSetupDuplicatePhoneConflict(t *testing.T) {
	svc, users, _ := newTestService(t)
	seedUser(t, users, "first@example.com", "+15550002")
	u := seedUser(t, users, "second@example.com", "")

	_, err := svc.Setup(context.Background(), u.ID, SetupInput{Phone: "+15550002"})
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("kind = %v, want Conflict", apperr.KindOf(err))
	}
}
