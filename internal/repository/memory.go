package repository

import (
	"context"
	"sync"
	"time"
)

type expiringValue struct {
	value     string
	expiresAt time.Time
}

func (v expiringValue) expired(now time.Time) bool {
	return !v.expiresAt.IsZero() && now.After(v.expiresAt)
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryTokenStore is the process-local token store used when Redis is absent.
type MemoryTokenStore struct {
	mu         sync.Mutex
	revoked    map[string]time.Time
	resets     map[string]expiringValue
	rateLimits map[string]*rateLimitEntry
	now        func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked:    make(map[string]time.Time),
		resets:     make(map[string]expiringValue),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (r *MemoryTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = r.now().Add(ttl)
	return nil
}

func (r *MemoryTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if r.now().After(expiresAt) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (r *MemoryTokenStore) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := expiringValue{value: userID}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.resets[token] = entry
	return nil
}

func (r *MemoryTokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.resets[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(r.resets, token)
	if entry.expired(r.now()) {
		return "", ErrTokenNotFound
	}
	return entry.value, nil
}

func (r *MemoryTokenStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}
