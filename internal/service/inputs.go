package service

import (
	"fmt"
	"time"

	"receipt-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// ExpenseInput is one line item of a receipt as submitted by a client.
type ExpenseInput struct {
	CategoryID      *uint            `json:"category_id" validate:"required,gt=0"`
	SpentOn         string           `json:"spent_on" validate:"required,max=100"`
	Remarks         string           `json:"remarks" validate:"max=200"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	TransactionDate string           `json:"transaction_date" validate:"required"`
	CurrencyID      *uint            `json:"currency_id" validate:"required,gt=0"`
}

// ReceiptFields are the editable header fields of a receipt.
type ReceiptFields struct {
	Date          string           `json:"date" validate:"required"`
	ReceiptNumber string           `json:"receipt_number" validate:"required,max=255"`
	Total         *decimal.Decimal `json:"total" validate:"required"`
	Store         string           `json:"store" validate:"required,max=255"`
	CurrencyID    *uint            `json:"currency_id" validate:"required,gt=0"`
}

// ReceiptInput creates a receipt together with its expenses.
type ReceiptInput struct {
	Date          string           `json:"date" validate:"required"`
	ReceiptNumber string           `json:"receipt_number" validate:"required,max=255"`
	Total         *decimal.Decimal `json:"total" validate:"required"`
	Store         string           `json:"store" validate:"required,max=255"`
	CurrencyID    *uint            `json:"currency_id" validate:"required,gt=0"`
	Expenses      []ExpenseInput   `json:"expenses" validate:"dive"`
}

func (in ReceiptInput) fields() ReceiptFields {
	return ReceiptFields{
		Date:          in.Date,
		ReceiptNumber: in.ReceiptNumber,
		Total:         in.Total,
		Store:         in.Store,
		CurrencyID:    in.CurrencyID,
	}
}

// TransactionInput records a standalone income or expense.
type TransactionInput struct {
	TransactionType string           `json:"transaction_type" validate:"required,oneof=Income Expense"`
	CategoryID      *uint            `json:"category_id" validate:"required,gt=0"`
	SpentOn         string           `json:"spent_on" validate:"required,max=100"`
	Remarks         string           `json:"remarks" validate:"max=200"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	TransactionDate string           `json:"transaction_date" validate:"required"`
	CurrencyID      *uint            `json:"currency_id" validate:"required,gt=0"`
}

// receiptHeader validates f and returns the parsed values. Problems go to ve.
func receiptHeader(ve *ValidationError, f ReceiptFields) (date time.Time, total decimal.Decimal) {
	date = parseDate(ve, "date", f.Date)
	checkAmount(ve, "total", f.Total)
	if f.Total != nil {
		total = *f.Total
	}
	return date, total
}

// expenseModel builds an Expense transaction from in. Field keys are prefixed
// with prefix, e.g. "expenses[1].".
func expenseModel(ve *ValidationError, prefix string, in ExpenseInput, ownerID uint) models.Transaction {
	date := parseDateTime(ve, prefix+"transaction_date", in.TransactionDate)
	checkAmount(ve, prefix+"amount", in.Amount)

	tx := models.Transaction{
		TransactionType: models.TransactionExpense,
		TransactionDate: date,
		SpentOn:         in.SpentOn,
		Remarks:         in.Remarks,
		CreatedBy:       ownerID,
	}
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.CategoryID != nil {
		tx.CategoryID = *in.CategoryID
	}
	if in.CurrencyID != nil {
		tx.CurrencyID = *in.CurrencyID
	}
	return tx
}

func expensePrefix(i int) string {
	return fmt.Sprintf("expenses[%d].", i)
}
