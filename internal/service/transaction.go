package service

import (
	"context"
	"errors"
	"fmt"

	"receipt-ledger/internal/models"

	"gorm.io/gorm"
)

// TransactionService records standalone income and expenses.
type TransactionService struct {
	db     *gorm.DB
	paging Paging
}

func NewTransactionService(db *gorm.DB, paging Paging) *TransactionService {
	return &TransactionService{db: db, paging: paging.normalize()}
}

func (s *TransactionService) Create(ctx context.Context, ownerID uint, in TransactionInput) (*models.Transaction, error) {
	ve := newValidationError()
	checkStruct(ve, in)
	date := parseDateTime(ve, "transaction_date", in.TransactionDate)
	checkAmount(ve, "amount", in.Amount)
	if in.CurrencyID != nil {
		if err := checkCurrencies(ctx, s.db, ve, map[string]uint{"currency_id": *in.CurrencyID}); err != nil {
			return nil, err
		}
	}
	if !ve.empty() {
		return nil, ve
	}

	tx := &models.Transaction{
		TransactionType: in.TransactionType,
		Amount:          *in.Amount,
		CurrencyID:      *in.CurrencyID,
		TransactionDate: date,
		CategoryID:      *in.CategoryID,
		SpentOn:         in.SpentOn,
		Remarks:         in.Remarks,
		CreatedBy:       ownerID,
	}
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, unavailable("create transaction", err)
	}
	return tx, nil
}

// List pages through the owner's transactions, newest first. An empty
// txType lists both kinds.
func (s *TransactionService) List(ctx context.Context, ownerID uint, txType string, page, perPage int) (Page[models.Transaction], error) {
	if txType != "" && !models.ValidTransactionType(txType) {
		return Page[models.Transaction]{}, InvalidField("transaction_type", "must be Income or Expense")
	}
	page = max(page, 1)
	if perPage <= 0 {
		perPage = s.paging.Default
	}
	perPage = min(perPage, s.paging.Max)

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("created_by = ?", ownerID)
	if txType != "" {
		base = base.Where("transaction_type = ?", txType)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[models.Transaction]{}, unavailable("count transactions", err)
	}
	var list []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order("transaction_date DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&list).Error; err != nil {
		return Page[models.Transaction]{}, unavailable("list transactions", err)
	}
	return newPage(list, total, page, perPage), nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id uint) error {
	var tx models.Transaction
	if err := s.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		return unavailable("load transaction", err)
	}
	if tx.CreatedBy != ownerID {
		return fmt.Errorf("transaction %d: %w", id, ErrUnauthorized)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Transaction{}, id).Error; err != nil {
		return unavailable("delete transaction", err)
	}
	return nil
}
