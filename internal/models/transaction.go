package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome  = "Income"
	TransactionExpense = "Expense"
)

// ValidTransactionType reports whether t is one of the two ledger entry kinds.
func ValidTransactionType(t string) bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single income or expense entry, optionally itemised on a receipt.
// Amounts are never negative; the type carries the direction.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ReceiptID       *uint           `gorm:"index" json:"receipt_id"`
	TransactionType string          `gorm:"size:16;index;not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CurrencyID      uint            `gorm:"index;not null" json:"currency_id"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	CategoryID      uint            `json:"category_id"`
	SpentOn         string          `gorm:"size:100" json:"spent_on"`
	Remarks         string          `gorm:"size:200" json:"remarks"`
	CreatedBy       uint            `gorm:"index;not null" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "income_expenses"
}
