package service

import (
	"context"
	"errors"
	"sync"

	"receipt-ledger/internal/events"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReceiptEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.ReceiptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

var errBrokerDown = errors.New("broker down")

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func id(v uint) *uint {
	return &v
}

func usdReceipt() ReceiptInput {
	return ReceiptInput{
		Date:          "2023-02-08",
		ReceiptNumber: "REC-12345",
		Total:         dec("150.50"),
		Store:         "SuperMart",
		CurrencyID:    id(147),
		Expenses: []ExpenseInput{{
			CategoryID:      id(7),
			SpentOn:         "Coffee",
			Remarks:         "Morning coffee",
			Amount:          dec("5.25"),
			TransactionDate: "2023-02-07 08:00:00",
			CurrencyID:      id(147),
		}},
	}
}
