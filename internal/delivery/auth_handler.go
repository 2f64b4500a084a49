package delivery

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase usecase.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc usecase.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(public, session gin.IRouter) {
	public.POST("/auth/signup", h.SignUp)
	public.POST("/auth/login", h.Login)

	session.POST("/auth/logout", h.Logout)
	session.GET("/auth/session", h.Session)
}

type signUpRequest struct {
	Email       string `json:"email"        binding:"required"`
	Password    string `json:"password"     binding:"required"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for sign up: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	info, err := h.useCase.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, h.log, "Failed to sign up", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Signed up successfully", info)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	info, err := h.useCase.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, "Failed to log in", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged in successfully", info)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	info := currentSession(c)
	if err := h.useCase.SignOut(c.Request.Context(), info.Session.ID); err != nil {
		respondError(c, h.log, "Failed to log out", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Session(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Session retrieved successfully", currentSession(c))
}
