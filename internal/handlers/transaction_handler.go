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

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type     models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount   decimal.Decimal        `json:"amount"`
	Date     string                 `json:"date" binding:"required"`
	Category string                 `json:"category" binding:"required,uuid"`
	Note     string                 `json:"note" binding:"max=255"`
}

// UpdateTransactionRequest carries transaction updates; nil fields are untouched.
type UpdateTransactionRequest struct {
	Type     *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount   *decimal.Decimal        `json:"amount"`
	Date     *string                 `json:"date"`
	Category *string                 `json:"category" binding:"omitempty,uuid"`
	Note     *string                 `json:"note" binding:"omitempty,max=255"`
}

// transactionListQuery binds the list endpoint's filter and pagination
// parameters.
type transactionListQuery struct {
	services.TransactionFilterParams
	pagination.PageRequest
}

// transactionPayload flattens a transaction with its category name and icon.
func transactionPayload(t *models.Transaction) gin.H {
	payload := gin.H{
		"id":         t.ID,
		"type":       t.Type,
		"amount":     t.Amount,
		"date":       t.Date.Format(services.DateLayout),
		"category":   t.CategoryID,
		"note":       t.Note,
		"created_at": t.CreatedAt,
	}
	if t.Category != nil {
		payload["category_name"] = t.Category.Name
		payload["category_icon"] = t.Category.Icon
	}
	return payload
}

// CreateTransaction records an income or expense
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} SuccessResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.Category, req.Type, req.Amount, date, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": transactionPayload(transaction)})
}

// ListTransactions lists the user's transactions with optional filters
// @Summary     List transactions
// @Description Filter by type, category, amount bounds, date range, and free-text search
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "income, expense, or all"
// @Param       category query string false "Category id"
// @Param       min query string false "Minimum amount"
// @Param       max query string false "Maximum amount"
// @Param       from query string false "Date on or after (YYYY-MM-DD)"
// @Param       to query string false "Date on or before (YYYY-MM-DD)"
// @Param       search query string false "Matches note or category name"
// @Success     200 {object} SuccessResponse "Transaction page"
// @Failure     400 {object} ErrorResponse "Invalid filter value"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query transactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := services.ParseTransactionFilter(query.TransactionFilterParams)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := h.transactionService.ListTransactions(userID, filter, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results := make([]gin.H, 0, len(page.Data))
	for i := range page.Data {
		results = append(results, transactionPayload(&page.Data[i]))
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

// Summary aggregates the filtered transaction set
// @Summary     Summarize transactions
// @Description Income and expense totals, balance, and count for the same filters as the list endpoint
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "income, expense, or all"
// @Param       category query string false "Category id"
// @Param       min query string false "Minimum amount"
// @Param       max query string false "Maximum amount"
// @Param       from query string false "Date on or after (YYYY-MM-DD)"
// @Param       to query string false "Date on or before (YYYY-MM-DD)"
// @Param       search query string false "Matches note or category name"
// @Success     200 {object} services.TransactionSummary "Summary figures"
// @Failure     400 {object} ErrorResponse "Invalid filter value"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var params services.TransactionFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := services.ParseTransactionFilter(params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.transactionService.Summarize(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"income":  summary.Income,
		"expense": summary.Expense,
		"balance": summary.Balance,
		"count":   summary.Count,
	})
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} SuccessResponse "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": transactionPayload(transaction)})
}

// UpdateTransaction applies updates to a transaction
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} SuccessResponse "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	params := services.UpdateTransactionParams{
		Type:       req.Type,
		Amount:     req.Amount,
		CategoryID: req.Category,
		Note:       req.Note,
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		params.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), params)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": transactionPayload(transaction)})
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} SuccessResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction deleted successfully"})
}
