package service

import (
	"context"
	"testing"

	"receipt-ledger/internal/database/dbtest"
	"receipt-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salary() TransactionInput {
	return TransactionInput{
		TransactionType: models.TransactionIncome,
		CategoryID:      id(1),
		SpentOn:         "Salary",
		Amount:          dec("3000"),
		TransactionDate: "2023-02-01",
		CurrencyID:      id(147),
	}
}

func TestTransactionCreateListDelete(t *testing.T) {
	svc := NewTransactionService(dbtest.New(t), Paging{Default: 10, Max: 100})
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, salary())
	require.NoError(t, err)
	assert.Nil(t, created.ReceiptID)

	page, err := svc.List(ctx, 1, "", 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.List(ctx, 1, models.TransactionExpense, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)

	assert.ErrorIs(t, svc.Delete(ctx, 2, created.ID), ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, 1, created.ID), ErrNotFound)
}

func TestTransactionCreate_Invalid(t *testing.T) {
	svc := NewTransactionService(dbtest.New(t), Paging{})
	in := salary()
	in.TransactionType = "Transfer"
	in.Amount = dec("-3")

	_, err := svc.Create(context.Background(), 1, in)
	fields := validationFields(t, err)
	assert.Contains(t, fields["transaction_type"], "must be one of")
	assert.Contains(t, fields, "amount")
}
