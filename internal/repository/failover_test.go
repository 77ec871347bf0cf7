package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *mockStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return m.Called(ctx, token, userID, ttl).Error(0)
}

func (m *mockStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverTokenStore(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)

		primary.On("IsRevoked", ctx, "jti").Return(true, nil).Once()

		revoked, err := repo.IsRevoked(ctx, "jti")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.False(t, repo.IsDegraded())
		fallback.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
		primary.AssertExpectations(t)
	})

	t.Run("RevocationFailsClosedWhilePrimaryDown", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)

		primary.On("IsRevoked", ctx, "jti-redis").Return(false, errors.New("connection refused")).Once()
		fallback.On("IsRevoked", ctx, "jti-redis").Return(false, nil).Once()

		revoked, err := repo.IsRevoked(ctx, "jti-redis")
		assert.ErrorIs(t, err, ErrRevocationUnavailable)
		assert.False(t, revoked)
		assert.True(t, repo.IsDegraded())

		// revoked during the outage, so memory knows about it
		fallback.On("IsRevoked", ctx, "jti-memory").Return(true, nil).Once()
		revoked, err = repo.IsRevoked(ctx, "jti-memory")
		require.NoError(t, err)
		assert.True(t, revoked)

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("OutageRevocationsSurviveRecovery", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)

		primary.On("IsRevoked", ctx, "jti").Return(false, nil).Once()
		fallback.On("IsRevoked", ctx, "jti").Return(true, nil).Once()

		revoked, err := repo.IsRevoked(ctx, "jti")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.False(t, repo.IsDegraded())
	})

	t.Run("PrimaryFailsThenRecovers", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)
		clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
		repo.now = clock.now

		primary.On("CheckRateLimit", ctx, "login:a", 5, time.Minute).Return(false, errors.New("connection refused")).Once()
		fallback.On("CheckRateLimit", ctx, "login:a", 5, time.Minute).Return(true, nil).Twice()

		allowed, err := repo.CheckRateLimit(ctx, "login:a", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.IsDegraded())

		// still inside the recovery interval: primary is skipped
		allowed, err = repo.CheckRateLimit(ctx, "login:a", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		clock.advance(recoveryInterval + time.Second)
		primary.On("CheckRateLimit", ctx, "login:a", 5, time.Minute).Return(true, nil).Once()

		allowed, err = repo.CheckRateLimit(ctx, "login:a", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, repo.IsDegraded())

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("NotFoundIsNotAFailure", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)

		primary.On("ConsumeResetToken", ctx, "missing").Return("", ErrTokenNotFound).Once()

		_, err := repo.ConsumeResetToken(ctx, "missing")
		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.False(t, repo.IsDegraded())
		fallback.AssertNotCalled(t, "ConsumeResetToken", mock.Anything, mock.Anything)
	})

	t.Run("WritesFallBack", func(t *testing.T) {
		primary := new(mockStore)
		fallback := new(mockStore)
		repo := NewFailoverTokenStore(primary, fallback, &logger)

		primary.On("Revoke", ctx, "jti", time.Hour).Return(errors.New("timeout")).Once()
		fallback.On("Revoke", ctx, "jti", time.Hour).Return(nil).Once()
		fallback.On("SaveResetToken", ctx, "tok", "user-1", time.Hour).Return(nil).Once()

		require.NoError(t, repo.Revoke(ctx, "jti", time.Hour))
		require.NoError(t, repo.SaveResetToken(ctx, "tok", "user-1", time.Hour))

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
