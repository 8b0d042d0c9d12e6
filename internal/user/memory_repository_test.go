package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedUser(t *testing.T, repo Repository, email, phone string) User {
	t.Helper()
	u := User{
		ID:          uuid.NewString(),
		Email:       email,
		PhoneNumber: phone,
		Role:        RoleUser,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	seedUser(t, repo, "a@x.com", "")

	err := repo.Create(context.Background(), User{ID: uuid.NewString(), Email: "a@x.com"})
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	repo := NewMemoryRepository()
	seedUser(t, repo, "", "+23765000001")

	err := repo.Create(context.Background(), User{ID: uuid.NewString(), PhoneNumber: "+23765000001"})
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdateSessionReplacesPrior(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "a@x.com", "")
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	if err := repo.UpdateSession(ctx, u.ID, "token-1", exp); err != nil {
		t.Fatalf("update session: %v", err)
	}
	if err := repo.UpdateSession(ctx, u.ID, "token-2", exp); err != nil {
		t.Fatalf("update session: %v", err)
	}

	got, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.SessionToken != "token-2" {
		t.Fatalf("expected token-2 stored, got %s", got.SessionToken)
	}
}

func TestConsumeOTP(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "a@x.com", "")
	ctx := context.Background()

	if err := repo.UpdateOTP(ctx, u.ID, "123456", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("update otp: %v", err)
	}

	ok, err := repo.ConsumeOTP(ctx, u.ID, "654321")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("wrong code must not consume")
	}

	// Mismatch leaves the stored pair intact.
	got, _ := repo.FindByID(ctx, u.ID)
	if got.OTPCode != "123456" {
		t.Fatalf("expected stored otp untouched, got %q", got.OTPCode)
	}

	ok, err = repo.ConsumeOTP(ctx, u.ID, "123456")
	if err != nil || !ok {
		t.Fatalf("expected consume to succeed, ok=%v err=%v", ok, err)
	}

	ok, err = repo.ConsumeOTP(ctx, u.ID, "123456")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("second consume of the same code must fail")
	}
}

func TestConsumeOTPExpired(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "a@x.com", "")
	ctx := context.Background()

	if err := repo.UpdateOTP(ctx, u.ID, "123456", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("update otp: %v", err)
	}
	ok, err := repo.ConsumeOTP(ctx, u.ID, "123456")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("expired code must not consume")
	}
}
