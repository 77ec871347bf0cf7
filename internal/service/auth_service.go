package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportspot/internal/auth"
	"sportspot/internal/config"
	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/metrics"
	"sportspot/internal/models"
	"sportspot/internal/repository"

	"github.com/rs/zerolog"
)

// ForgotPasswordMessage is returned whether or not the account exists.
const ForgotPasswordMessage = "If an account with that email exists, a reset link has been sent."

const minPasswordLength = 6

// ResetNotifier delivers a password reset token to the account owner.
type ResetNotifier interface {
	SendReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

type AuthService struct {
	users    domain.UserRepository
	tokens   domain.TokenStore
	issuer   domain.TokenIssuer
	hasher   domain.PasswordHasher
	notifier ResetNotifier
	cfg      config.AuthConfig
	logger   *zerolog.Logger
}

func NewAuthService(
	users domain.UserRepository,
	tokens domain.TokenStore,
	issuer domain.TokenIssuer,
	hasher domain.PasswordHasher,
	notifier ResetNotifier,
	cfg config.AuthConfig,
	logger *zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		hasher:   hasher,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *AuthService) storeFailure(op string, err error) error {
	metrics.IncStoreError(op)
	s.logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return domain.Infrastructure("account service is unavailable, please retry", err)
}

func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.StudentNumber = strings.TrimSpace(reg.StudentNumber)

	switch {
	case reg.FullName == "":
		return nil, domain.Validation("fullName", "fullName is required")
	case reg.Username == "":
		return nil, domain.Validation("username", "username is required")
	case len(reg.Username) < models.MinUsernameLength:
		return nil, domain.Validation("username", fmt.Sprintf("username must be at least %d characters long", models.MinUsernameLength))
	case strings.Contains(reg.Username, "@"):
		return nil, domain.Validation("username", "username must not contain @")
	case reg.Email == "":
		return nil, domain.Validation("email", "email is required")
	case !strings.Contains(reg.Email, "@"):
		return nil, domain.Validation("email", "email is invalid")
	case reg.Password == "":
		return nil, domain.Validation("password", "password is required")
	case len(reg.Password) < minPasswordLength:
		return nil, domain.Validation("password", fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}

	if reg.Role == "" {
		reg.Role = models.RoleStudent
	}
	if !reg.Role.Valid() {
		return nil, domain.Validation("role", "role must be student or teacher")
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, domain.Infrastructure("could not register user", err)
	}

	user := &models.User{
		Email:         reg.Email,
		Name:          reg.FullName,
		Username:      reg.Username,
		PasswordHash:  hash,
		StudentNumber: reg.StudentNumber,
		Role:          reg.Role,
	}
	profile := &models.Profile{
		FullName:      reg.FullName,
		StudentNumber: reg.StudentNumber,
		Year:          strings.TrimSpace(reg.Year),
		Course:        strings.TrimSpace(reg.Course),
		Email:         reg.Email,
		Role:          reg.Role,
		ProfileImage:  models.DefaultProfileImage,
	}

	if err := s.users.CreateUserWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			switch database.DuplicateColumn(err) {
			case "users.username":
				return nil, domain.Conflict("username already taken", nil)
			case "users.student_number":
				return nil, domain.Conflict("student number already registered", nil)
			default:
				return nil, domain.Conflict("email already registered", nil)
			}
		}
		return nil, s.storeFailure("create user", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	return user, nil
}

// publicUser applies the configured admin role and strips the password hash.
func (s *AuthService) publicUser(user *models.User) *models.User {
	view := *user
	view.PasswordHash = ""
	if s.cfg.IsAdmin(view.Email) {
		view.Role = models.RoleAdmin
	}
	return &view
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.Validation("identifier", "email, username or student number is required")
	}
	if password == "" {
		return nil, domain.Validation("password", "password is required")
	}

	allowed, err := s.tokens.CheckRateLimit(ctx, "login:"+strings.ToLower(identifier), s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)
	if err != nil {
		return nil, s.storeFailure("check login rate limit", err)
	}
	if !allowed {
		return nil, domain.RateLimited("too many login attempts, try again later")
	}

	user, err := s.users.FindUserByIdentifier(ctx, identifier)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, s.storeFailure("find user", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info().Str("user_id", user.ID).Msg("Login rejected")
		return nil, domain.Unauthorized("invalid credentials")
	}

	view := s.publicUser(user)
	token, expiresAt, err := s.issuer.Issue(view)
	if err != nil {
		return nil, domain.Infrastructure("could not issue token", err)
	}
	return &models.Session{Token: token, ExpiresAt: expiresAt, User: view}, nil
}

// Authenticate resolves a bearer token into the caller identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	identity, err := s.issuer.Verify(ctx, token)
	switch {
	case err == nil:
		return identity, nil
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevokedToken):
		return nil, domain.Unauthorized("invalid or expired token")
	default:
		return nil, s.storeFailure("verify token", err)
	}
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return domain.Unauthorized("authentication required")
	}
	if err := s.tokens.Revoke(ctx, identity.TokenID, time.Until(identity.ExpiresAt)); err != nil {
		return s.storeFailure("revoke token", err)
	}
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ForgotPassword stores a reset token for known emails. The answer does not
// reveal whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.Validation("email", "a valid email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return ForgotPasswordMessage, nil
	}
	if err != nil {
		return "", s.storeFailure("get user by email", err)
	}

	token, err := newResetToken()
	if err != nil {
		return "", domain.Infrastructure("could not create reset token", err)
	}
	if err := s.tokens.SaveResetToken(ctx, token, user.ID, s.cfg.ResetTokenTTL); err != nil {
		return "", s.storeFailure("save reset token", err)
	}

	if s.notifier == nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("Password reset requested but no delivery is configured")
		return ForgotPasswordMessage, nil
	}
	if err := s.notifier.SendReset(ctx, user.Email, token, time.Now().Add(s.cfg.ResetTokenTTL)); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to deliver password reset")
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Validation("token", "reset token is required")
	}
	if len(password) < minPasswordLength {
		return domain.Validation("password", fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}

	userID, err := s.tokens.ConsumeResetToken(ctx, token)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return domain.Validation("token", "reset token is invalid or expired")
	}
	if err != nil {
		return s.storeFailure("consume reset token", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Infrastructure("could not reset password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return domain.Validation("token", "reset token is invalid or expired")
		}
		return s.storeFailure("update password", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Password reset")
	return nil
}
