package database

import (
	"context"
	"errors"
	"time"

	"facturation-backend/models"
	"facturation-backend/utils"

	"gorm.io/datatypes"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrIdempotencyInProgress means another request holding the same key has
	// not finished yet.
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
)

// InvoiceStore owns persisted invoices. Implementations recompute the
// derived fields on create, and on update whenever items or fees change.
type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Get(ctx context.Context, id string) (models.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]models.Invoice, error)
	Update(ctx context.Context, id string, patch InvoicePatch) (models.Invoice, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ListFilter narrows List. Without a complete date range invoices are ordered
// by creation time, newest first; with one they are ordered by invoice date.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// HasRange reports whether both bounds are set.
func (f ListFilter) HasRange() bool {
	return f.From != nil && f.To != nil
}

// Contains reports whether the invoice date falls within the inclusive range.
func (f ListFilter) Contains(date time.Time) bool {
	if !f.HasRange() {
		return true
	}
	d := truncateDay(date)
	return !d.Before(truncateDay(*f.From)) && !d.After(truncateDay(*f.To))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InvoicePatch carries the fields of a partial update; nil means unchanged.
type InvoicePatch struct {
	InvoiceNumber *string
	Date          *datatypes.Date
	ClientName    *string
	DeliveryFees  *float64
	LaborCost     *float64
	Items         *[]models.InvoiceItem `gorm:"-"`
}

// TouchesTotals reports whether the patch changes an input of the totals.
func (p InvoicePatch) TouchesTotals() bool {
	return p.Items != nil || p.DeliveryFees != nil || p.LaborCost != nil
}

// Rounded returns a copy of the patch with fees and unit prices rounded to
// cents. The caller's values are not modified.
func (p InvoicePatch) Rounded() InvoicePatch {
	if p.DeliveryFees != nil {
		v := utils.RoundCents(*p.DeliveryFees)
		p.DeliveryFees = &v
	}
	if p.LaborCost != nil {
		v := utils.RoundCents(*p.LaborCost)
		p.LaborCost = &v
	}
	if p.Items != nil {
		items := make([]models.InvoiceItem, len(*p.Items))
		copy(items, *p.Items)
		for i := range items {
			items[i].UnitPrice = utils.RoundCents(items[i].UnitPrice)
		}
		p.Items = &items
	}
	return p
}

// Apply merges the rounded patch into invoice and recomputes the derived
// fields when items or fees changed.
func (p InvoicePatch) Apply(invoice *models.Invoice) error {
	p = p.Rounded()
	if p.InvoiceNumber != nil {
		invoice.InvoiceNumber = *p.InvoiceNumber
	}
	if p.Date != nil {
		invoice.Date = *p.Date
	}
	if p.ClientName != nil {
		invoice.ClientName = *p.ClientName
	}
	if p.DeliveryFees != nil {
		invoice.DeliveryFees = *p.DeliveryFees
	}
	if p.LaborCost != nil {
		invoice.LaborCost = *p.LaborCost
	}
	if p.Items != nil {
		invoice.Items = *p.Items // Rounded already copied the slice
	}
	if !p.TouchesTotals() {
		return nil
	}
	return invoice.Recompute()
}

// IdempotencyStore records the first response produced for an Idempotency-Key.
type IdempotencyStore interface {
	// Reserve returns the stored record for rec.Key, creating a pending one
	// when none exists. created is true only for the call that inserted it.
	Reserve(ctx context.Context, rec models.IdempotencyKey) (stored models.IdempotencyKey, created bool, err error)
	Complete(ctx context.Context, key string, status int, body []byte) error
	// Release drops a pending reservation so the key can be retried.
	Release(ctx context.Context, key string) error
}
