package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"receipt-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConversionPlaces is the precision of converted amounts.
const ConversionPlaces = 6

// CurrencyService serves currency reference data.
type CurrencyService struct {
	db *gorm.DB
}

func NewCurrencyService(db *gorm.DB) *CurrencyService {
	return &CurrencyService{db: db}
}

func (s *CurrencyService) List(ctx context.Context) ([]models.Currency, error) {
	var list []models.Currency
	if err := s.db.WithContext(ctx).Order("currency_code ASC").Find(&list).Error; err != nil {
		return nil, unavailable("list currencies", err)
	}
	return list, nil
}

func (s *CurrencyService) Get(ctx context.Context, id uint) (*models.Currency, error) {
	var c models.Currency
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("currency %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("get currency", err)
	}
	return &c, nil
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Result decimal.Decimal `json:"result"`
}

// Convert goes through the base currency: amount * from.to_base * to.from_base.
// Converting a currency to itself needs no rates.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, fromID, toID uint) (*Conversion, error) {
	from, err := s.Get(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to := from
	if toID != fromID {
		if to, err = s.Get(ctx, toID); err != nil {
			return nil, err
		}
	}

	result, err := convert(amount, from, to)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		From:   from.CurrencyCode,
		To:     to.CurrencyCode,
		Amount: amount,
		Result: result,
	}, nil
}

func convert(amount decimal.Decimal, from, to *models.Currency) (decimal.Decimal, error) {
	if from.ID == to.ID {
		return amount, nil
	}
	if !from.ConversionToBase.Valid {
		return decimal.Zero, fmt.Errorf("%s to base: %w", from.CurrencyCode, ErrNoConversionRate)
	}
	if !to.ConversionFromBase.Valid {
		return decimal.Zero, fmt.Errorf("base to %s: %w", to.CurrencyCode, ErrNoConversionRate)
	}
	return amount.
		Mul(from.ConversionToBase.Decimal).
		Mul(to.ConversionFromBase.Decimal).
		Round(ConversionPlaces), nil
}

// checkCurrencies records a validation problem for every field whose currency id
// does not exist. refs maps field key to currency id.
func checkCurrencies(ctx context.Context, db *gorm.DB, ve *ValidationError, refs map[string]uint) error {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(refs))
	seen := make(map[uint]bool)
	for _, id := range refs {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var found []uint
	if err := db.WithContext(ctx).Model(&models.Currency{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return unavailable("check currencies", err)
	}
	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if id := refs[k]; id != 0 && !exists[id] {
			ve.Add(k, "references an unknown currency")
		}
	}
	return nil
}
