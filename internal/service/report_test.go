package service

import (
	"context"
	"testing"
	"time"

	"receipt-ledger/internal/database/dbtest"
	"receipt-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTx(t *testing.T, db *gorm.DB, owner uint, txType, amount string, currency uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Transaction{
		TransactionType: txType,
		Amount:          decimal.RequireFromString(amount),
		CurrencyID:      currency,
		TransactionDate: at,
		SpentOn:         "seed",
		CreatedBy:       owner,
	}).Error)
}

func newReportService(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	return NewReportService(db), db
}

func TestMonthlySummary_CurrentAndPrior(t *testing.T) {
	now := time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, db := newReportService(t)

	seedTx(t, db, 1, models.TransactionExpense, "60", 147, time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "40", 147, time.Date(2023, 3, 10, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "50", 147, time.Date(2023, 2, 20, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "7.5", 44, time.Date(2023, 3, 2, 9, 0, 0, 0, time.UTC))
	// ignored: income, another owner, older month
	seedTx(t, db, 1, models.TransactionIncome, "1000", 147, time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 2, models.TransactionExpense, "999", 147, time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "5", 147, time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC))

	sum, err := svc.MonthlySummary(context.Background(), 1, models.TransactionExpense, now)
	require.NoError(t, err)

	require.Len(t, sum.Current, 2)
	byCode := map[string]string{}
	for _, ct := range sum.Current {
		byCode[ct.CurrencyCode] = ct.Total.String()
		assert.Equal(t, "2023-03", ct.Month.String())
	}
	assert.Equal(t, "100", byCode["USD"])
	assert.Equal(t, "7.5", byCode["EUR"])

	require.Len(t, sum.Prior, 1)
	assert.Equal(t, "USD", sum.Prior[0].CurrencyCode)
	assert.Equal(t, "US Dollar", sum.Prior[0].CurrencyName)
	assert.True(t, decimal.NewFromInt(50).Equal(sum.Prior[0].Total))
	assert.Equal(t, "2023-02", sum.Prior[0].Month.String())
}

func TestMonthlySummary_Income(t *testing.T) {
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	svc, db := newReportService(t)
	seedTx(t, db, 1, models.TransactionIncome, "3000", 147, time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC))

	sum, err := svc.MonthlySummary(context.Background(), 1, models.TransactionIncome, now)
	require.NoError(t, err)
	assert.Empty(t, sum.Current)
	require.Len(t, sum.Prior, 1)
	assert.Equal(t, "2023-12", sum.Prior[0].Month.String())
}

func TestMonthlySummary_EmptyLedger(t *testing.T) {
	svc, _ := newReportService(t)
	sum, err := svc.MonthlySummary(context.Background(), 1, models.TransactionExpense, time.Now())
	require.NoError(t, err)
	assert.NotNil(t, sum.Current)
	assert.NotNil(t, sum.Prior)
	assert.Empty(t, sum.Current)
}

func TestMonthlySummary_BadType(t *testing.T) {
	svc, _ := newReportService(t)
	_, err := svc.MonthlySummary(context.Background(), 1, "Transfer", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransactions_GroupsByDayCurrencyAndType(t *testing.T) {
	svc, db := newReportService(t)
	seedTx(t, db, 1, models.TransactionExpense, "5.25", 147, time.Date(2023, 2, 7, 8, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "8.75", 147, time.Date(2023, 2, 7, 13, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionIncome, "100", 147, time.Date(2023, 2, 7, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 1, models.TransactionExpense, "3", 44, time.Date(2023, 2, 8, 9, 0, 0, 0, time.UTC))
	seedTx(t, db, 2, models.TransactionExpense, "1", 147, time.Date(2023, 2, 7, 9, 0, 0, 0, time.UTC))

	list, err := svc.Transactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)

	totals := map[string]string{}
	for _, ts := range list {
		totals[ts.FormattedDate+" "+ts.CurrencyCode+" "+ts.TransactionType] = ts.Total.String()
	}
	assert.Equal(t, map[string]string{
		"2023-02-07 USD Expense": "14",
		"2023-02-07 USD Income":  "100",
		"2023-02-08 EUR Expense": "3",
	}, totals)
}
