package passwordreset

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.Mutex
	requests map[string]ResetRequest
}

// NewMemoryRepository builds an in-memory reset-request store for development
// and testing. Redeem performs its check-and-mark under the lock, matching
// the conditional-update semantics of the Postgres implementation.
func NewMemoryRepository() Repository {
	return &memoryRepository{requests: make(map[string]ResetRequest)}
}

func (r *memoryRepository) Create(_ context.Context, req ResetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.Token] = req
	return nil
}

func (r *memoryRepository) FindValid(_ context.Context, token string) (ResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[token]
	if !ok || !req.Redeemable(time.Now()) {
		return ResetRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *memoryRepository) Redeem(_ context.Context, token string) (ResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[token]
	if !ok || !req.Redeemable(time.Now()) {
		return ResetRequest{}, ErrNotFound
	}
	req.Used = true
	r.requests[token] = req
	return req, nil
}
