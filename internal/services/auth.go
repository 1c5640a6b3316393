package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// AuthService validates bearer tokens and resolves the caller identity.
type AuthService interface {
	VerifyToken(tokenString string) (uuid.UUID, error)
	IssueToken(userID uuid.UUID, ttl time.Duration) (string, error)
}

type AuthConfig struct {
	Secret string
	Issuer string
}

type authService struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewAuthService(log *logger.Logger, cfg AuthConfig) (AuthService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth secret required")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "scholar-backend"
	}
	return &authService{
		log:    log.With("service", "AuthService"),
		secret: []byte(cfg.Secret),
		issuer: issuer,
	}, nil
}

func (s *authService) VerifyToken(tokenString string) (uuid.UUID, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return uuid.Nil, apierr.AuthFailed(fmt.Errorf("missing bearer token"))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apierr.AuthFailed(fmt.Errorf("invalid token: %w", err))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierr.AuthFailed(fmt.Errorf("invalid subject claim: %w", err))
	}
	return userID, nil
}

func (s *authService) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
