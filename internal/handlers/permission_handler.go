package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/services"
)

// PermissionHandler handles permission listing.
type PermissionHandler struct {
	permissionService services.PermissionServicer
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(permissionService services.PermissionServicer) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// ListPermissions lists the permission catalog
// @Summary     List permissions
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       search query string false "Codename substring"
// @Success     200 {object} SuccessResponse "Permissions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	perms, err := h.permissionService.ListPermissions(c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := make([]gin.H, 0, len(perms))
	for _, p := range perms {
		results = append(results, gin.H{"codename": p.Codename, "name": p.Name})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}
