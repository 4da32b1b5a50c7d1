package events

import (
	"context"
	"time"

	"facturation-backend/models"
)

// Type names an invoice change.
type Type string

const (
	InvoiceCreated Type = "invoice.created"
	InvoiceUpdated Type = "invoice.updated"
	InvoiceDeleted Type = "invoice.deleted"
)

// Event is one change notification. Invoice is nil for deletions.
type Event struct {
	Type      Type            `json:"type"`
	InvoiceID string          `json:"invoiceId"`
	Invoice   *models.Invoice `json:"invoice,omitempty"`
	At        time.Time       `json:"at"`
}

// Broker fans invoice changes out to subscribers.
type Broker interface {
	Publish(ctx context.Context, evt Event) error
	// Subscribe returns a channel of events and a cancel func. The channel is
	// closed after cancel is called or ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, func())
	Close() error
}

// Bus is the broker used by the HTTP layer; main wires it.
var Bus Broker

// Created builds the event for a new invoice.
func Created(invoice models.Invoice) Event {
	return snapshot(InvoiceCreated, invoice)
}

// Updated builds the event for a changed invoice.
func Updated(invoice models.Invoice) Event {
	return snapshot(InvoiceUpdated, invoice)
}

// Deleted builds the event for a removed invoice.
func Deleted(id string) Event {
	return Event{Type: InvoiceDeleted, InvoiceID: id, At: time.Now().UTC()}
}

func snapshot(t Type, invoice models.Invoice) Event {
	cp := invoice.Clone()
	return Event{Type: t, InvoiceID: invoice.ID, Invoice: &cp, At: time.Now().UTC()}
}
