package service

import (
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(req dto.RefreshRequest) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenService) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, apperr.Conflict("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}

	now := time.Now()
	user := &model.User{
		Email:       email,
		Password:    string(hash),
		Name:        strings.TrimSpace(req.Name),
		Role:        role,
		Provider:    "local",
		LastLoginAt: &now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *authService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if user.Password == "" {
		// OAuth-only account, no local password to compare against.
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now

	return s.issueTokens(user)
}

func (s *authService) Refresh(req dto.RefreshRequest) (*dto.AuthResponse, error) {
	claims, err := s.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if user.RefreshTokenID == nil || *user.RefreshTokenID != claims.TokenID {
		return nil, apperr.Unauthorized("refresh token has been revoked")
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	var userDTO dto.UserResponse
	if err := copier.Copy(&userDTO, user); err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: userDTO, AccessToken: accessToken}, nil
}

// issueTokens mints both tokens, records the refresh token id on the user and
// persists last-login in the same update.
func (s *authService) issueTokens(user *model.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, tokenID, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.RefreshTokenID = &tokenID
	if err := s.userRepo.Update(user); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("Failed to persist refresh token id")
		return nil, err
	}

	var userDTO dto.UserResponse
	if err := copier.Copy(&userDTO, user); err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		User:         userDTO,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
