package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/service"
)

func newRouter(t *testing.T) (*gin.Engine, service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.RefreshSecret = "test-refresh"
	tokens := service.NewTokenService(cfg)

	r := gin.New()
	r.GET("/protected", Authenticate(tokens), func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, ident)
	})
	r.GET("/staff", Authenticate(tokens), RequireRoles(model.RoleTeacher, model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, tokens
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_RejectsMissingAndBadTokens(t *testing.T) {
	r, _ := newRouter(t)

	if w := get(r, "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := get(r, "/protected", "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestAuthenticate_LoadsIdentity(t *testing.T) {
	r, tokens := newRouter(t)

	token, err := tokens.IssueAccessToken(42, model.RoleStudent)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	w := get(r, "/protected", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	r, tokens := newRouter(t)

	studentToken, err := tokens.IssueAccessToken(1, model.RoleStudent)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if w := get(r, "/staff", studentToken); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", w.Code)
	}

	teacherToken, err := tokens.IssueAccessToken(2, model.RoleTeacher)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if w := get(r, "/staff", teacherToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for teacher, got %d", w.Code)
	}
}
