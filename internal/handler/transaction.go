package handler

import (
	"net/http"

	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	Transactions *service.TransactionService
}

func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{Transactions: transactions}
}

type listTransactionsQuery struct {
	Type    string `form:"transaction_type"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// ListTransactions GET /api/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var q listTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.Transactions.List(c.Request.Context(), user.ID, q.Type, q.Page, q.PerPage)
	if err != nil {
		respondError(c, "transaction", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateTransaction POST /api/transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in service.TransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.Transactions.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, "transaction", err)
		return
	}
	util.Created(c, tx)
}

// DeleteTransaction DELETE /api/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "transaction")
	if !ok {
		return
	}
	if err := h.Transactions.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, "transaction", err)
		return
	}
	util.Success(c, "transaction_deleted")
}
