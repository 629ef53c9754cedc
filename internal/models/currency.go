package models

import "github.com/shopspring/decimal"

// Currency is reference data. Conversion factors are relative to the base currency
// and may be missing for currencies nobody has priced yet.
type Currency struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	CurrencyCode       string              `gorm:"size:8;not null" json:"currency_code"`
	CurrencyName       string              `gorm:"size:64;not null" json:"currency_name"`
	Country            string              `gorm:"size:255" json:"country"`
	ConversionFromBase decimal.NullDecimal `gorm:"type:decimal(15,6)" json:"conversion_from_base"`
	ConversionToBase   decimal.NullDecimal `gorm:"type:decimal(15,6)" json:"conversion_to_base"`
}
