package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt groups expense line items bought together. CreatedBy is the owner.
type Receipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	ReceiptNumber string          `gorm:"size:255;not null" json:"receipt_number"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Store         string          `gorm:"size:255;not null" json:"store"`
	CurrencyID    uint            `json:"currency_id"`
	CreatedBy     uint            `gorm:"index;not null" json:"created_by"`
	UpdatedBy     *uint           `json:"updated_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Expenses []Transaction `gorm:"foreignKey:ReceiptID;constraint:OnDelete:SET NULL" json:"expenses"`
}
