package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/cache"
	"eventflex/internal/utils"
	"eventflex/internal/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrInvalidRefresh     = apperr.Unauthorized("invalid refresh token")
	ErrSessionExpired     = apperr.Unauthorized("session expired, please log in again")
	ErrAccountBlocked     = apperr.Forbidden("your account has been blocked")
	ErrRoleNotAllowed     = apperr.BadRequest("role must be one of: host, organizer, gig")
	ErrEmailTaken         = apperr.Conflict("an account with this email already exists")
	ErrPhoneTaken         = apperr.Conflict("an account with this phone number already exists")
	ErrIdentifierRequired = apperr.BadRequest("email or phone is required")
	ErrWrongPassword      = apperr.BadRequest("current password is incorrect")
	ErrSamePassword       = apperr.BadRequest("new password must differ from the current one")
	ErrUserNotFound       = apperr.NotFound("user not found")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*models.User, *TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
	Me(ctx context.Context, userID uint) (*models.User, error)
	// ValidateSession checks that an access token still matches the user's
	// current token version and that the account is not blocked.
	ValidateSession(ctx context.Context, claims *models.UserClaims) error
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type service struct {
	users   repositories.UserRepository
	wallets repositories.WalletRepository
	tx      repositories.Transactor
	cache   cache.Cache
	tokens  *utils.TokenManager
	now     func() time.Time
}

func NewService(users repositories.UserRepository, wallets repositories.WalletRepository, tx repositories.Transactor, c cache.Cache, tokens *utils.TokenManager) Service {
	return &service{
		users:   users,
		wallets: wallets,
		tx:      tx,
		cache:   c,
		tokens:  tokens,
		now:     time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !models.IsValidSignupRole(req.Role) {
		return nil, ErrRoleNotAllowed
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByPhone(ctx, req.Phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  string(hashed),
		Role:      req.Role,
		Status:    models.UserStatusActive,
		KYCStatus: models.KYCNotSubmitted,
	}
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.wallets.WithTx(tx).Create(ctx, &models.Wallet{UserID: user.ID, Status: models.WalletStatusActive})
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*models.User, *TokenPair, error) {
	if err := validation.Struct(req); err != nil {
		return nil, nil, err
	}
	user, err := s.getUserByIdentifier(ctx, strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Log.WithField("user_id", user.ID).Info("login failed: incorrect password")
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		return nil, nil, ErrAccountBlocked
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	return user, pair, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if user.Status == models.UserStatusBlocked {
		return nil, ErrAccountBlocked
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return s.issue(user)
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	s.forgetSession(ctx, userID)
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	user.TokenVersion++ // Invalidate existing tokens

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.forgetSession(ctx, userID)
	return nil
}

func (s *service) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *service) ValidateSession(ctx context.Context, claims *models.UserClaims) error {
	state, err := s.cache.GetSession(ctx, claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Warn("session cache read failed")
	}
	if state == nil {
		user, err := s.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionExpired
			}
			return err
		}
		state = &cache.SessionState{TokenVersion: user.TokenVersion, Status: user.Status, Role: user.Role}
		if err := s.cache.CacheSession(ctx, claims.UserID, state); err != nil {
			logger.Log.WithError(err).Warn("session cache write failed")
		}
	}

	if state.Status == models.UserStatusBlocked {
		return ErrAccountBlocked
	}
	if state.TokenVersion != claims.TokenVersion || state.Role != claims.Role {
		return ErrSessionExpired
	}
	return nil
}

func (s *service) issue(user *models.User) (*TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) forgetSession(ctx context.Context, userID uint) {
	if err := s.cache.InvalidateSession(ctx, userID); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to drop cached session")
	}
}

func (s *service) getUserByIdentifier(ctx context.Context, email, phone string) (*models.User, error) {
	if email != "" {
		return s.users.GetByEmail(ctx, email)
	}
	if phone != "" {
		return s.users.GetByPhone(ctx, phone)
	}
	return nil, ErrIdentifierRequired
}
