package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// GroupHandler handles group administration requests.
type GroupHandler struct {
	groupService services.GroupServicer
	auditService services.AuditServicer
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService services.GroupServicer, auditService services.AuditServicer) *GroupHandler {
	return &GroupHandler{groupService: groupService, auditService: auditService}
}

func groupPayload(group *models.Group) gin.H {
	return gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"permissions": group.PermissionCodenames(),
	}
}

// groupListQuery binds the group list's search and pagination parameters.
type groupListQuery struct {
	Search string `form:"search"`
	pagination.PageRequest
}

// CreateGroupRequest carries a new group's name and permission codenames.
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	Permissions []string `json:"permissions"`
}

// UpdateGroupRequest carries group updates; nil fields are untouched.
type UpdateGroupRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=150"`
	Permissions *[]string `json:"permissions"`
}

// BulkDeleteRequest carries the ids for a bulk group delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// ListGroups lists groups with optional name search
// @Summary     List groups
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       search query string false "Group name substring"
// @Success     200 {object} SuccessResponse "Group page"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	var query groupListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.groupService.ListGroups(query.Search, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := make([]gin.H, 0, len(page.Data))
	for i := range page.Data {
		results = append(results, groupPayload(&page.Data[i]))
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

// CreateGroup creates a group
// @Summary     Create a group
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGroupRequest true "Group details"
// @Success     201 {object} SuccessResponse "Group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate group name"
// @Router      /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(req.Name, req.Permissions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "CREATE_GROUP", "group", group.ID, c.ClientIP(),
		map[string]interface{}{"name": group.Name})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Group created successfully",
		"group":   groupPayload(group),
	})
}

// GetGroup returns one group with its permissions
// @Summary     Get a group
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} SuccessResponse "Group"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /groups/{id} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.GetGroupByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "group": groupPayload(group)})
}

// UpdateGroup renames a group and/or replaces its permission set
// @Summary     Update a group
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Param       request body UpdateGroupRequest true "Fields to update"
// @Success     200 {object} SuccessResponse "Group updated"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     409 {object} ErrorResponse "Duplicate group name"
// @Router      /groups/{id} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.UpdateGroup(c.Param("id"), req.Name, req.Permissions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "UPDATE_GROUP", "group", group.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Group updated successfully",
		"group":   groupPayload(group),
	})
}

// DeleteGroup removes a group and its membership edges
// @Summary     Delete a group
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} SuccessResponse "Group deleted"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.DeleteGroup(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "DELETE_GROUP", "group", group.ID, c.ClientIP(),
		map[string]interface{}{"name": group.Name})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Group %q deleted successfully", group.Name),
	})
}

// BulkDeleteGroups deletes many groups in one all-or-nothing transaction
// @Summary     Bulk delete groups
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkDeleteRequest true "Group ids"
// @Success     200 {object} SuccessResponse "Groups deleted"
// @Failure     400 {object} ErrorResponse "Empty id list"
// @Failure     404 {object} ErrorResponse "No matching groups"
// @Router      /groups/bulk-delete [post]
func (h *GroupHandler) BulkDeleteGroups(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "ids must be a non-empty list"))
		return
	}

	deleted, err := h.groupService.BulkDeleteGroups(req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actorID, "BULK_DELETE_GROUPS", "group", "", c.ClientIP(),
		map[string]interface{}{"ids": req.IDs, "deleted_count": deleted})

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deleted_count": deleted,
		"message":       fmt.Sprintf("%d group(s) deleted successfully", deleted),
	})
}
