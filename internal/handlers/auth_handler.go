package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/services"
)

// AuthHandler handles registration, login, logout, and the self profile.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username        string   `json:"username" binding:"required,min=3,max=100"`
	Email           string   `json:"email" binding:"required,email,max=255"`
	Phone           string   `json:"phone" binding:"required,phone"`
	Password        string   `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string   `json:"confirm_password" binding:"required"`
	Groups          []string `json:"groups"`
	Permissions     []string `json:"permissions"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LogoutRequest carries the refresh token to invalidate.
type LogoutRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// userPayload builds the user object shared by auth and user endpoints.
func userPayload(user *models.User) gin.H {
	payload := gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"phone":       user.Phone,
		"is_active":   user.IsActive,
		"groups":      user.GroupNames(),
		"permissions": user.AllPermissionCodenames(),
		"created_at":  user.CreatedAt,
		"updated_at":  user.UpdatedAt,
	}
	if user.LastLoginAt != nil {
		payload["last_login"] = user.LastLoginAt
	} else {
		payload["last_login"] = nil
	}
	if user.ProfileImage != "" {
		payload["profile_image"] = user.ProfileImage
	}
	return payload
}

// Register handles user registration
// @Summary     Register a new user
// @Description Create a user account with unique username, email, and phone
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} SuccessResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input or password mismatch"
// @Failure     409 {object} ErrorResponse "Duplicate username, email, or phone"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.Password != req.ConfirmPassword {
		respondWithError(c, apperrors.ErrPasswordMismatch)
		return
	}

	user, err := h.userService.Register(services.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Groups:      req.Groups,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    userPayload(user),
	})
}

// Login handles user login
// @Summary     Login
// @Description Verify credentials and issue an access/refresh token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} SuccessResponse "Token pair issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    userPayload(user),
		"tokens": gin.H{
			"access":  accessToken,
			"refresh": refreshToken,
		},
	})
}

// Logout invalidates the caller's refresh token
// @Summary     Logout
// @Description Invalidate the presented refresh token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LogoutRequest true "Refresh token"
// @Success     200 {object} SuccessResponse "Logged out"
// @Failure     400 {object} ErrorResponse "Missing or invalid refresh token"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Refresh token is required"))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.Refresh)
	if err != nil || claims.UserID != userID {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid token"))
		return
	}

	stored, err := h.userService.GetRefreshTokenHash(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if stored == "" || stored != middleware.HashToken(req.Refresh) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid token"))
		return
	}

	if err := h.userService.ClearRefreshTokenHash(userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LOGOUT", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

// UpdateProfileRequest carries self-service profile changes.
type UpdateProfileRequest struct {
	Phone        *string `json:"phone" binding:"omitempty,phone"`
	ProfileImage *string `json:"profile_image"`
}

// GetProfile returns the authenticated user's profile
// @Summary     Get own profile
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SuccessResponse "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserWithAccess(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userPayload(user)})
}

// UpdateProfile applies self-service profile changes
// @Summary     Update own profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile changes"
// @Success     200 {object} SuccessResponse "Profile updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.Phone, req.ProfileImage)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userPayload(user),
	})
}
