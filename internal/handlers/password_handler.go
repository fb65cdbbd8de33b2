package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/services"
)

// PasswordHandler handles the forgot/reset password flow.
type PasswordHandler struct {
	resetService services.PasswordResetServicer
	auditService services.AuditServicer
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(resetService services.PasswordResetServicer, auditService services.AuditServicer) *PasswordHandler {
	return &PasswordHandler{resetService: resetService, auditService: auditService}
}

// ForgotPasswordRequest carries the account email.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the token and replacement password.
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ForgotPassword issues a reset token
// @Summary     Request a password reset token
// @Description Issues a fresh 1-hour token and invalidates any prior one
// @Tags        password
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} SuccessResponse "Token issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Unknown email"
// @Router      /password/forgot [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.resetService.IssueToken(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(token.UserID, "ISSUE_RESET_TOKEN", "password_reset_token", token.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Password reset token generated successfully",
		"reset_token": token.Token,
	})
}

// ResetPassword consumes a token and replaces the password
// @Summary     Reset password with a token
// @Tags        password
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Token and new password"
// @Success     200 {object} SuccessResponse "Password reset"
// @Failure     400 {object} ErrorResponse "Invalid, expired, or consumed token"
// @Router      /password/reset [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		respondWithError(c, apperrors.ErrPasswordMismatch)
		return
	}

	if err := h.resetService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}
