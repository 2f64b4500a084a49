package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler serves the caller's own profile and the admin user list.
type UserHandler struct {
	profiles usecase.ProfileUseCase
	auth     usecase.AuthUseCase
	log      *logrus.Logger
}

func NewUserHandler(profiles usecase.ProfileUseCase, auth usecase.AuthUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		auth:     auth,
		log:      logger,
	}
}

func (h *UserHandler) RegisterRoutes(session, admin gin.IRouter) {
	session.GET("/profile", h.GetProfile)
	session.PATCH("/profile", h.UpdateProfile)

	users := admin.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), currentSession(c).Profile.ID)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve profile", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warnf("Failed to bind JSON for profile update: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile, err := h.profiles.UpdateOwnProfile(c.Request.Context(), currentSession(c).Profile.ID, update)
	if err != nil {
		respondError(c, h.log, "Failed to update profile", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params, err := bindListParams(c)
	if err != nil {
		respondError(c, h.log, "Invalid list parameters", err)
		return
	}

	page, err := h.profiles.ListProfiles(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, "Failed to retrieve users", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", page)
}

type createUserRequest struct {
	Email       string `json:"email"        binding:"required"`
	Password    string `json:"password"     binding:"required"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for create user: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile, err := h.auth.AdminCreateUser(c.Request.Context(), req.Email, req.Password, req.DisplayName, req.IsAdmin)
	if err != nil {
		respondError(c, h.log, "Failed to create user", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "User created successfully", profile)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "user")
	if !ok {
		return
	}
	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warnf("Failed to bind JSON for user %s update: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile, err := h.profiles.AdminUpdateProfile(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.log, "Failed to update user", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User updated successfully", profile)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, h.log, "id", "user")
	if !ok {
		return
	}
	if id == currentSession(c).Profile.ID {
		ErrorResponse(c, http.StatusBadRequest, "Admins cannot delete their own account")
		return
	}

	if err := h.auth.AdminDeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to delete user", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}
