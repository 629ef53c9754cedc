package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"receipt-ledger/internal/events"
	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// receiptColumns is the allowlist for sort_col and search_col.
var receiptColumns = map[string]bool{
	"id":             true,
	"date":           true,
	"receipt_number": true,
	"total":          true,
	"store":          true,
	"currency_id":    true,
	"created_at":     true,
}

// Paging holds page size limits for list endpoints.
type Paging struct {
	Default int
	Max     int
}

func (p Paging) normalize() Paging {
	if p.Default <= 0 {
		p.Default = 10
	}
	if p.Max < p.Default {
		p.Max = 100
	}
	return p
}

// ListQuery describes one page of a receipt listing.
type ListQuery struct {
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	SortCol   string `form:"sort_col"`
	SortOrder string `form:"sort_order"`
	SearchCol string `form:"search_col"`
	SearchBy  string `form:"search_by"`
}

// Page is a slice of results plus the numbers needed to fetch the rest.
type Page[T any] struct {
	Data        []T   `json:"data"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
}

func newPage[T any](data []T, total int64, page, perPage int) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Page[T]{Data: data, Total: total, CurrentPage: page, PerPage: perPage, LastPage: last}
}

// ReceiptService manages receipts and the expenses itemised on them.
// Every operation is scoped to the calling user.
type ReceiptService struct {
	db        *gorm.DB
	publisher events.Publisher
	paging    Paging
}

func NewReceiptService(db *gorm.DB, publisher events.Publisher, paging Paging) *ReceiptService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ReceiptService{db: db, publisher: publisher, paging: paging.normalize()}
}

// Create validates in and stores the receipt and its expenses atomically.
// Expenses are always stored as type Expense, linked to the new receipt.
func (s *ReceiptService) Create(ctx context.Context, ownerID uint, in ReceiptInput) (*models.Receipt, error) {
	ve := newValidationError()
	checkStruct(ve, in)
	date, total := receiptHeader(ve, in.fields())

	refs := map[string]uint{}
	if in.CurrencyID != nil {
		refs["currency_id"] = *in.CurrencyID
	}
	expenses := make([]models.Transaction, 0, len(in.Expenses))
	for i, e := range in.Expenses {
		prefix := expensePrefix(i)
		expenses = append(expenses, expenseModel(ve, prefix, e, ownerID))
		if e.CurrencyID != nil {
			refs[prefix+"currency_id"] = *e.CurrencyID
		}
	}
	if err := checkCurrencies(ctx, s.db, ve, refs); err != nil {
		return nil, err
	}
	if !ve.empty() {
		return nil, ve
	}

	receipt := &models.Receipt{
		Date:          date,
		ReceiptNumber: in.ReceiptNumber,
		Total:         total,
		Store:         in.Store,
		CurrencyID:    *in.CurrencyID,
		CreatedBy:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(receipt).Error; err != nil {
			return err
		}
		for i := range expenses {
			expenses[i].ReceiptID = &receipt.ID
			if err := tx.Create(&expenses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("create receipt", err)
	}
	receipt.Expenses = expenses

	logger.FromContext(ctx).Info().
		Uint("receipt_id", receipt.ID).
		Int("expenses", len(expenses)).
		Msg("receipt created")
	s.publish(ctx, events.ReceiptCreated, receipt)
	return receipt, nil
}

// Get returns the receipt with its expenses ordered by id.
func (s *ReceiptService) Get(ctx context.Context, ownerID, id uint) (*models.Receipt, error) {
	receipt, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	expenses := []models.Transaction{}
	if err := s.db.WithContext(ctx).
		Where("receipt_id = ?", receipt.ID).
		Order("id ASC").
		Find(&expenses).Error; err != nil {
		return nil, unavailable("load receipt expenses", err)
	}
	receipt.Expenses = expenses
	return receipt, nil
}

// Update replaces the header fields of a receipt. Expenses are not touched.
// Concurrent updates are last-write-wins.
func (s *ReceiptService) Update(ctx context.Context, ownerID, id uint, in ReceiptFields) (*models.Receipt, error) {
	ve := newValidationError()
	checkStruct(ve, in)
	date, total := receiptHeader(ve, in)
	if in.CurrencyID != nil {
		if err := checkCurrencies(ctx, s.db, ve, map[string]uint{"currency_id": *in.CurrencyID}); err != nil {
			return nil, err
		}
	}
	if !ve.empty() {
		return nil, ve
	}

	receipt, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updatedBy := ownerID
	err = s.db.WithContext(ctx).Model(receipt).Updates(map[string]any{
		"date":           date,
		"receipt_number": in.ReceiptNumber,
		"total":          total,
		"store":          in.Store,
		"currency_id":    *in.CurrencyID,
		"updated_by":     updatedBy,
	}).Error
	if err != nil {
		return nil, unavailable("update receipt", err)
	}

	updated, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ReceiptUpdated, updated)
	return updated, nil
}

// Delete removes the receipt. Its expenses survive with receipt_id cleared.
func (s *ReceiptService) Delete(ctx context.Context, ownerID, id uint) error {
	receipt, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("receipt_id = ?", receipt.ID).
			Update("receipt_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Receipt{}, receipt.ID).Error
	})
	if err != nil {
		return unavailable("delete receipt", err)
	}

	logger.FromContext(ctx).Info().Uint("receipt_id", receipt.ID).Msg("receipt deleted")
	s.publish(ctx, events.ReceiptDeleted, receipt)
	return nil
}

// List returns one page of the caller's receipts, without expenses.
func (s *ReceiptService) List(ctx context.Context, ownerID uint, q ListQuery) (Page[models.Receipt], error) {
	ve := newValidationError()
	if q.Page < 0 {
		ve.Add("page", "must not be negative")
	}
	if q.PerPage < 0 {
		ve.Add("per_page", "must not be negative")
	}
	if q.SortCol != "" && !receiptColumns[q.SortCol] {
		ve.Add("sort_col", "is not a sortable column")
	}
	sortOrder := strings.ToLower(q.SortOrder)
	if sortOrder != "" && sortOrder != "asc" && sortOrder != "desc" {
		ve.Add("sort_order", "must be asc or desc")
	}
	if q.SearchCol != "" && !receiptColumns[q.SearchCol] {
		ve.Add("search_col", "is not a searchable column")
	}
	if !ve.empty() {
		return Page[models.Receipt]{}, ve
	}

	page := max(q.Page, 1)
	perPage := q.PerPage
	if perPage == 0 {
		perPage = s.paging.Default
	}
	perPage = min(perPage, s.paging.Max)

	base := s.db.WithContext(ctx).Model(&models.Receipt{}).Where("created_by = ?", ownerID)
	if q.SearchCol != "" && q.SearchBy != "" {
		base = base.Where(clause.Like{
			Column: clause.Column{Name: q.SearchCol},
			Value:  "%" + q.SearchBy + "%",
		})
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[models.Receipt]{}, unavailable("count receipts", err)
	}

	sortCol := q.SortCol
	if sortCol == "" {
		sortCol = "id"
	}
	order := clause.OrderByColumn{
		Column: clause.Column{Name: sortCol},
		Desc:   sortOrder == "desc",
	}

	var list []models.Receipt
	if err := base.Session(&gorm.Session{}).
		Order(order).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&list).Error; err != nil {
		return Page[models.Receipt]{}, unavailable("list receipts", err)
	}
	return newPage(list, total, page, perPage), nil
}

// owned loads a receipt header and checks that ownerID created it.
func (s *ReceiptService) owned(ctx context.Context, ownerID, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("receipt %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("load receipt", err)
	}
	if receipt.CreatedBy != ownerID {
		return nil, fmt.Errorf("receipt %d: %w", id, ErrUnauthorized)
	}
	return &receipt, nil
}

// publish never fails the caller. The row is already committed.
func (s *ReceiptService) publish(ctx context.Context, event string, r *models.Receipt) {
	ctx = context.WithoutCancel(ctx)
	if err := s.publisher.Publish(ctx, events.NewReceiptEvent(event, r.ID, r.CreatedBy)); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event", event).
			Uint("receipt_id", r.ID).
			Msg("publish receipt event failed")
	}
}
