package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"moneta/internal/config"
	apperrors "moneta/internal/errors"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// UserHandler handles admin-side user management requests.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// userListQuery binds the user list's filter, pagination, and export
// parameters.
type userListQuery struct {
	services.UserFilterParams
	pagination.PageRequest
	Format string `form:"format"`
}

// ListUsers lists, filters, orders, and optionally exports users
// @Summary     List users
// @Description Filter and order users; format=csv streams the full filtered set as CSV
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       search query string false "Match against username, email, phone, or group name"
// @Param       username query string false "Username substring"
// @Param       email query string false "Email substring"
// @Param       phone query string false "Phone substring"
// @Param       group query string false "Group name substring"
// @Param       start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param       end_date query string false "Created on or before (YYYY-MM-DD)"
// @Param       ordering query string false "Field name, optionally -prefixed for descending"
// @Param       format query string false "csv for CSV export"
// @Success     200 {object} SuccessResponse "User page or CSV"
// @Failure     400 {object} ErrorResponse "Invalid ordering or date filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query userListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := services.ParseUserFilter(query.UserFilterParams, config.Get().Timezone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if strings.EqualFold(strings.TrimSpace(query.Format), "csv") {
		h.exportCSV(c, filter)
		return
	}

	page, err := h.userService.ListUsers(filter, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := make([]gin.H, 0, len(page.Data))
	for i := range page.Data {
		results = append(results, userPayload(&page.Data[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       page.TotalItems,
		"total_pages": page.TotalPages,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"results":     results,
	})
}

// exportCSV streams the complete filtered user set as CSV, unpaginated.
// Column order is fixed; groups and permissions are comma-joined names.
func (h *UserHandler) exportCSV(c *gin.Context, filter services.UserFilter) {
	users, err := h.userService.ListAllUsers(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loc := config.Get().Timezone

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "username", "email", "phone", "is_active", "groups", "permissions", "created_at"})
	for i := range users {
		u := &users[i]
		_ = w.Write([]string{
			u.ID,
			u.Username,
			u.Email,
			u.Phone,
			strconv.FormatBool(u.IsActive),
			strings.Join(u.GroupNames(), ","),
			strings.Join(u.AllPermissionCodenames(), ","),
			u.CreatedAt.In(loc).Format(time.RFC3339),
		})
	}
	w.Flush()
}

// GetUser returns one user with group and permission detail
// @Summary     Get a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} SuccessResponse "User"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserWithAccess(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups := make([]gin.H, 0, len(user.Groups))
	for i := range user.Groups {
		groups = append(groups, gin.H{
			"id":          user.Groups[i].ID,
			"name":        user.Groups[i].Name,
			"permissions": user.Groups[i].PermissionCodenames(),
		})
	}

	payload := userPayload(user)
	payload["groups"] = groups

	c.JSON(http.StatusOK, gin.H{"success": true, "user": payload})
}

// UpdateUserRequest carries admin-side updates to a user.
type UpdateUserRequest struct {
	Username    *string   `json:"username" binding:"omitempty,min=3,max=100"`
	Email       *string   `json:"email" binding:"omitempty,email,max=255"`
	Phone       *string   `json:"phone" binding:"omitempty,phone"`
	IsActive    *bool     `json:"is_active"`
	IsStaff     *bool     `json:"is_staff"`
	Groups      *[]string `json:"groups"`
	Permissions *[]string `json:"permissions"`
}

// UpdateUser applies admin updates to a user
// @Summary     Update a user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} SuccessResponse "User updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Duplicate unique field"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateUser(c.Param("id"), services.UpdateUserParams{
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		Groups:      req.Groups,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "UPDATE_USER", "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    userPayload(user),
	})
}

// DeleteUser removes a user; self-delete is forbidden
// @Summary     Delete a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} SuccessResponse "User deleted"
// @Failure     403 {object} ErrorResponse "Self-delete attempt"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	targetID := c.Param("id")
	if err := h.userService.DeleteUser(actorID, targetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "DELETE_USER", "user", targetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}
