package service

import (
	"context"
	"time"

	"receipt-ledger/internal/models"
	"receipt-ledger/internal/report"

	"gorm.io/gorm"
)

// ReportService loads a user's ledger and hands it to the aggregation engine.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// MonthlySummary totals txType per currency for the month of ref and the month before.
func (s *ReportService) MonthlySummary(ctx context.Context, ownerID uint, txType string, ref time.Time) (report.MonthlySummary, error) {
	if !models.ValidTransactionType(txType) {
		return report.MonthlySummary{}, InvalidField("transaction_type", "must be Income or Expense")
	}
	rows, err := s.rows(ctx, ownerID, txType)
	if err != nil {
		return report.MonthlySummary{}, err
	}
	return report.SummarizeByMonth(rows, txType, ref), nil
}

// Transactions lists per-day totals by currency and type over all history.
func (s *ReportService) Transactions(ctx context.Context, ownerID uint) ([]report.TransactionSummary, error) {
	rows, err := s.rows(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	return report.ListTransactions(rows), nil
}

// rows loads the owner's transactions joined with their currency, oldest first.
// An empty txType loads both kinds.
func (s *ReportService) rows(ctx context.Context, ownerID uint, txType string) ([]report.Row, error) {
	q := s.db.WithContext(ctx).
		Table("income_expenses AS ie").
		Select(`ie.id AS transaction_id, ie.transaction_type, ie.currency_id,
			c.currency_code, c.currency_name, ie.amount, ie.transaction_date`).
		Joins("JOIN currencies c ON c.id = ie.currency_id").
		Where("ie.created_by = ?", ownerID)
	if txType != "" {
		q = q.Where("ie.transaction_type = ?", txType)
	}

	var rows []report.Row
	if err := q.Order("ie.transaction_date ASC, ie.id ASC").Scan(&rows).Error; err != nil {
		return nil, unavailable("load transactions", err)
	}
	return rows, nil
}
