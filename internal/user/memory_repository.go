package user

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for development and
// testing. All mutations run under one lock, giving the same per-user
// serialization the Postgres statements provide.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if user.Email != "" && existing.Email == user.Email {
			return ErrDuplicate
		}
		if user.PhoneNumber != "" && existing.PhoneNumber == user.PhoneNumber {
			return ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email != "" && user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.PhoneNumber != "" && user.PhoneNumber == phone {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) UpdateSession(_ context.Context, id, token string, expiresAt time.Time) error {
	return r.mutate(id, func(u *User) {
		u.SessionToken = token
		u.SessionExpiresAt = expiresAt
	})
}

func (r *memoryRepository) ClearSession(_ context.Context, id string) error {
	return r.mutate(id, func(u *User) {
		u.SessionToken = ""
		u.SessionExpiresAt = time.Time{}
	})
}

func (r *memoryRepository) UpdateOTP(_ context.Context, id, code string, expiresAt time.Time) error {
	return r.mutate(id, func(u *User) {
		u.OTPCode = code
		u.OTPExpiresAt = expiresAt
	})
}

func (r *memoryRepository) ConsumeOTP(_ context.Context, id, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if user.OTPCode == "" || user.OTPCode != code || !time.Now().Before(user.OTPExpiresAt) {
		return false, nil
	}
	user.OTPCode = ""
	user.OTPExpiresAt = time.Time{}
	r.users[id] = user
	return true, nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string) error {
	return r.mutate(id, func(u *User) {
		u.LastLoginAt = time.Now().UTC()
	})
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	return r.mutate(id, func(u *User) {
		u.PasswordHash = hash
	})
}

func (r *memoryRepository) UpdatePhone(_ context.Context, id, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for otherID, other := range r.users {
		if otherID != id && phone != "" && other.PhoneNumber == phone {
			return ErrDuplicate
		}
	}
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PhoneNumber = phone
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status string) error {
	return r.mutate(id, func(u *User) {
		u.Status = status
	})
}

func (r *memoryRepository) mutate(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&user)
	r.users[id] = user
	return nil
}
