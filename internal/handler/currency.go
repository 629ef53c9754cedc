package handler

import (
	"net/http"

	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CurrencyHandler serves the currency catalog.
type CurrencyHandler struct {
	Currencies *service.CurrencyService
}

func NewCurrencyHandler(currencies *service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{Currencies: currencies}
}

// ListCurrencies GET /api/currencies
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	list, err := h.Currencies.List(c.Request.Context())
	if err != nil {
		respondError(c, "currency", err)
		return
	}
	util.Success(c, list)
}

// GetCurrency GET /api/currencies/:id
func (h *CurrencyHandler) GetCurrency(c *gin.Context) {
	id, ok := pathID(c, "currency")
	if !ok {
		return
	}
	cur, err := h.Currencies.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "currency", err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

type convertQuery struct {
	From   uint   `form:"from" binding:"required"`
	To     uint   `form:"to" binding:"required"`
	Amount string `form:"amount" binding:"required"`
}

// Convert GET /api/currencies/convert?from=44&to=147&amount=10
func (h *CurrencyHandler) Convert(c *gin.Context) {
	var q convertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(q.Amount)
	if err != nil {
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{
			"amount": "must be a number",
		})
		return
	}
	conv, err := h.Currencies.Convert(c.Request.Context(), amount, q.From, q.To)
	if err != nil {
		respondError(c, "currency", err)
		return
	}
	util.Success(c, conv)
}
