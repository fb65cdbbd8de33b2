package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// GoalHandler handles budget goal requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// UpsertGoalRequest represents the request payload for creating or replacing
// a month's goal.
type UpsertGoalRequest struct {
	Month        string          `json:"month" binding:"required"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	GoldAmount   decimal.Decimal `json:"gold_amount"`
}

func goalPayload(g *models.BudgetGoal) gin.H {
	return gin.H{
		"id":            g.ID,
		"month":         g.Month.Format(services.DateLayout),
		"target_amount": g.TargetAmount,
		"gold_amount":   g.GoldAmount,
		"created_at":    g.CreatedAt,
		"updated_at":    g.UpdatedAt,
	}
}

// ListGoals lists the user's budget goals, newest month first
// @Summary     List budget goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} SuccessResponse "Goal page"
// @Router      /goals [get]
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var pageReq pagination.PageRequest
	if err := c.ShouldBindQuery(&pageReq); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.goalService.ListGoals(userID, pageReq)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := make([]gin.H, 0, len(page.Data))
	for i := range page.Data {
		results = append(results, goalPayload(&page.Data[i]))
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

// UpsertGoal creates or replaces the goal for a month
// @Summary     Set a month's budget goal
// @Description One goal per user per month; posting again replaces the amounts
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertGoalRequest true "Goal details"
// @Success     201 {object} SuccessResponse "Goal stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [post]
func (h *GoalHandler) UpsertGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	month, err := parseDate("month", req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpsertGoal(userID, month, req.TargetAmount, req.GoldAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "goal": goalPayload(goal)})
}

// GetGoal returns one budget goal
// @Summary     Get a budget goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} SuccessResponse "Goal"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "goal": goalPayload(goal)})
}

// DeleteGoal removes a budget goal
// @Summary     Delete a budget goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} SuccessResponse "Goal deleted"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Goal deleted successfully"})
}
