package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/apperr"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AccessClaims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID  uint   `json:"userId"`
	TokenID string `json:"tokenId"`
	jwt.RegisteredClaims
}

type TokenService interface {
	IssueAccessToken(userID uint, role string) (string, error)
	IssueRefreshToken(userID uint) (token string, tokenID string, err error)
	ParseAccessToken(token string) (*AccessClaims, error)
	ParseRefreshToken(token string) (*RefreshClaims, error)
}

type tokenService struct {
	secret        []byte
	refreshSecret []byte
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		secret:        []byte(cfg.JWT.Secret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
	}
}

func (s *tokenService) IssueAccessToken(userID uint, role string) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *tokenService) IssueRefreshToken(userID uint) (string, string, error) {
	now := time.Now()
	tokenID := uuid.NewString()
	claims := &RefreshClaims{
		UserID:  userID,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return token, tokenID, nil
}

func (s *tokenService) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}

func (s *tokenService) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	return claims, nil
}
