package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"eventflex/internal/config"
	"eventflex/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token claims")

// TokenManager signs and verifies the access/refresh token pair. The two
// tokens use different secrets so a refresh token never passes as an access token.
type TokenManager struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

// GenerateTokens generates an access token and a refresh token for the given user claims.
func (m *TokenManager) GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	if m.cfg.AccessSecret == "" || m.cfg.RefreshSecret == "" {
		return "", "", errors.New("JWT secrets not configured")
	}

	now := m.now()
	subject := strconv.FormatUint(uint64(claims.UserID), 10)

	accessClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
		},
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		Permissions:  claims.Permissions,
		TokenVersion: claims.TokenVersion,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(m.cfg.AccessSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	// Refresh tokens carry no permissions; they are re-derived on refresh.
	refreshClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
		},
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		TokenVersion: claims.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(m.cfg.RefreshSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (m *TokenManager) ParseAccessToken(tokenStr string) (*models.UserClaims, error) {
	return m.parse(tokenStr, m.cfg.AccessSecret)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (m *TokenManager) ParseRefreshToken(tokenStr string) (*models.UserClaims, error) {
	return m.parse(tokenStr, m.cfg.RefreshSecret)
}

func (m *TokenManager) parse(tokenStr, secret string) (*models.UserClaims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
