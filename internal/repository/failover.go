package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"sportspot/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// ErrRevocationUnavailable means revocation state cannot be confirmed.
var ErrRevocationUnavailable = errors.New("revocation list unavailable")

// FailoverTokenStore serves from primary and switches to fallback while
// primary is failing, probing primary again after recoveryInterval.
type FailoverTokenStore struct {
	primary   domain.TokenStore
	fallback  domain.TokenStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverTokenStore(primary, fallback domain.TokenStore, logger *zerolog.Logger) *FailoverTokenStore {
	return &FailoverTokenStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// IsDegraded reports whether calls are currently served by the fallback.
func (r *FailoverTokenStore) IsDegraded() bool {
	return r.isDown.Load()
}

func (r *FailoverTokenStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary token store failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the next call should try primary.
func (r *FailoverTokenStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverTokenStore) primaryOK() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary token store recovered")
	}
}

// do runs call against primary when healthy and against fallback otherwise.
// ErrTokenNotFound is an answer, not a failure.
func do[T any](r *FailoverTokenStore, call func(store domain.TokenStore) (T, error)) (T, error) {
	if r.usePrimary() {
		v, err := call(r.primary)
		if err == nil || errors.Is(err, ErrTokenNotFound) {
			r.primaryOK()
			return v, err
		}
		r.markDown(err)
	}
	return call(r.fallback)
}

func (r *FailoverTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	_, err := do(r, func(s domain.TokenStore) (struct{}, error) {
		return struct{}{}, s.Revoke(ctx, tokenID, ttl)
	})
	return err
}

// IsRevoked fails closed while primary is down. The fallback only holds
// revocations written during an outage, so a miss there proves nothing.
func (r *FailoverTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.usePrimary() {
		revoked, err := r.primary.IsRevoked(ctx, tokenID)
		if err == nil {
			r.primaryOK()
			if revoked {
				return true, nil
			}
			return r.revokedDuringOutage(ctx, tokenID), nil
		}
		r.markDown(err)
	}

	if r.revokedDuringOutage(ctx, tokenID) {
		return true, nil
	}
	return false, ErrRevocationUnavailable
}

func (r *FailoverTokenStore) revokedDuringOutage(ctx context.Context, tokenID string) bool {
	revoked, err := r.fallback.IsRevoked(ctx, tokenID)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Fallback revocation check failed")
		return false
	}
	return revoked
}

func (r *FailoverTokenStore) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := do(r, func(s domain.TokenStore) (struct{}, error) {
		return struct{}{}, s.SaveResetToken(ctx, token, userID, ttl)
	})
	return err
}

func (r *FailoverTokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	return do(r, func(s domain.TokenStore) (string, error) {
		return s.ConsumeResetToken(ctx, token)
	})
}

func (r *FailoverTokenStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return do(r, func(s domain.TokenStore) (bool, error) {
		return s.CheckRateLimit(ctx, key, limit, window)
	})
}
