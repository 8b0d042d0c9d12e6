package profile

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for development and
// testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) FindByUser(_ context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) Create(_ context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryRepository) Update(_ context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.profiles[profile.UserID]
	if !ok {
		return ErrNotFound
	}
	profile.EmailVerified = existing.EmailVerified
	profile.PhoneVerified = existing.PhoneVerified
	profile.CreatedAt = existing.CreatedAt
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryRepository) SetEmailVerified(_ context.Context, userID string) error {
	return r.setFlag(userID, func(p *Profile) { p.EmailVerified = true })
}

func (r *memoryRepository) SetPhoneVerified(_ context.Context, userID string) error {
	return r.setFlag(userID, func(p *Profile) { p.PhoneVerified = true })
}

func (r *memoryRepository) setFlag(userID string, fn func(*Profile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	fn(&p)
	r.profiles[userID] = p
	return nil
}
