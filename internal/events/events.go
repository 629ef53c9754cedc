// Package events publishes receipt lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	ReceiptCreated = "receipt.created"
	ReceiptUpdated = "receipt.updated"
	ReceiptDeleted = "receipt.deleted"
)

// ReceiptEvent carries identifiers only; consumers read the ledger for details.
type ReceiptEvent struct {
	Event     string    `json:"event"`
	ReceiptID uint      `json:"receipt_id"`
	OwnerID   uint      `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptEvent(event string, receiptID, ownerID uint) ReceiptEvent {
	return ReceiptEvent{
		Event:     event,
		ReceiptID: receiptID,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC(),
	}
}

func (e ReceiptEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, e ReceiptEvent) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ReceiptEvent) error { return nil }
func (Nop) Close() error                                { return nil }
