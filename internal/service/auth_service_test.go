package service

import (
	"testing"

	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/testutil"
)

func newAuthFixture(t *testing.T) (AuthService, TokenService) {
	t.Helper()
	db := testutil.DB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	tokens := NewTokenService(cfg)
	return NewAuthService(repository.NewUserRepository(db), tokens), tokens
}

func TestRegister_IssuesTokensAndDefaultsRole(t *testing.T) {
	authSvc, tokens := newAuthFixture(t)

	resp, err := authSvc.Register(dto.RegisterRequest{
		Email:    "Student@Example.COM",
		Password: "secret123",
		Name:     "Sam",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.User.Role != model.RoleStudent {
		t.Fatalf("expected default role student, got %q", resp.User.Role)
	}
	if resp.User.Email != "student@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", resp)
	}

	claims, err := tokens.ParseAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != model.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	authSvc, _ := newAuthFixture(t)

	req := dto.RegisterRequest{Email: "dup@example.com", Password: "secret123", Name: "Dup"}
	if _, err := authSvc.Register(req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := authSvc.Register(req)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for duplicate email, got %v", err)
	}
}

func TestLogin_WrongPasswordUnauthorized(t *testing.T) {
	authSvc, _ := newAuthFixture(t)

	if _, err := authSvc.Register(dto.RegisterRequest{Email: "a@example.com", Password: "secret123", Name: "A"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := authSvc.Login(dto.LoginRequest{Email: "a@example.com", Password: "wrong"}); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized for wrong password, got %v", err)
	}
	if _, err := authSvc.Login(dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized for unknown email, got %v", err)
	}

	resp, err := authSvc.Login(dto.LoginRequest{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("valid login failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected access token on login")
	}
}

func TestRefresh_RotatedTokenRevoked(t *testing.T) {
	authSvc, _ := newAuthFixture(t)

	registered, err := authSvc.Register(dto.RegisterRequest{Email: "r@example.com", Password: "secret123", Name: "R"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := authSvc.Refresh(dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("expected new access token")
	}

	// Logging in again rotates the stored refresh token id; the old refresh
	// token must stop working.
	if _, err := authSvc.Login(dto.LoginRequest{Email: "r@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, err = authSvc.Refresh(dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized for revoked refresh token, got %v", err)
	}
}
