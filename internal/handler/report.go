package handler

import (
	"net/http"
	"time"

	"receipt-ledger/internal/models"
	"receipt-ledger/internal/report"
	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Reports *service.ReportService
	Now     func() time.Time
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports, Now: time.Now}
}

// monthTotal is one entry of the summary lists. The month key is named after
// the report, e.g. "expense_month".
type monthTotal map[string]any

func monthTotals(list []report.CurrencyTotal, monthKey string) []monthTotal {
	out := make([]monthTotal, 0, len(list))
	for _, ct := range list {
		out = append(out, monthTotal{
			"currency_id":   ct.CurrencyID,
			"currency_code": ct.CurrencyCode,
			"currency_name": ct.CurrencyName,
			"total":         ct.Total,
			monthKey:        ct.Month.String(),
		})
	}
	return out
}

func (h *ReportHandler) summary(c *gin.Context, txType, prefix string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sum, err := h.Reports.MonthlySummary(c.Request.Context(), user.ID, txType, h.Now())
	if err != nil {
		respondError(c, "report", err)
		return
	}
	util.Success(c, gin.H{
		prefix + "_this_month": monthTotals(sum.Current, prefix+"_month"),
		prefix + "_last_month": monthTotals(sum.Prior, prefix+"_month"),
	})
}

// ExpenseSummary GET /api/report/expense/months/summary
func (h *ReportHandler) ExpenseSummary(c *gin.Context) {
	h.summary(c, models.TransactionExpense, "expense")
}

// IncomeSummary GET /api/report/income/months/summary
func (h *ReportHandler) IncomeSummary(c *gin.Context) {
	h.summary(c, models.TransactionIncome, "income")
}

// Transactions GET /api/report/transactions
func (h *ReportHandler) Transactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Reports.Transactions(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "report", err)
		return
	}
	if list == nil {
		list = []report.TransactionSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
