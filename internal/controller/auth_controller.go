package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/service"
)

type AuthController struct {
	authSvc service.AuthService
}

func NewAuthController(authSvc service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Register godoc
// @Summary Register a new account
// @Description Create a user with email and password and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 400 {object} dto.Envelope "Invalid request body"
// @Failure 409 {object} dto.Envelope "Email already registered"
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.authSvc.Register(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 401 {object} dto.Envelope "Invalid email or password"
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.authSvc.Login(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Exchange a valid refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.Envelope{data=dto.AuthResponse}
// @Failure 401 {object} dto.Envelope "Invalid or revoked refresh token"
// @Router /auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.authSvc.Refresh(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
