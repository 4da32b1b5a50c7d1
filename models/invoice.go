package models

import (
	"time"

	"facturation-backend/billing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is a garage invoice. Subtotal, Total and TotalInWords are derived
// from Items, DeliveryFees and LaborCost; see Recompute.
type Invoice struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	InvoiceNumber string         `json:"invoiceNumber" gorm:"not null;index"`
	Date          datatypes.Date `json:"date" gorm:"not null;index"`
	ClientName    string         `json:"clientName" gorm:"not null;index"`

	Items        []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	DeliveryFees float64       `json:"deliveryFees" gorm:"type:numeric(14,2);not null;default:0"`
	LaborCost    float64       `json:"laborCost" gorm:"type:numeric(14,2);not null;default:0"`

	Subtotal     float64 `json:"subtotal" gorm:"type:numeric(14,2)"`
	Total        float64 `json:"total" gorm:"type:numeric(14,2)"`
	TotalInWords string  `json:"totalInWords"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InvoiceItem is one line of an invoice. Position keeps the print order.
type InvoiceItem struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	InvoiceID   string  `json:"-" gorm:"type:varchar(36);not null;index"`
	Position    int     `json:"-" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	Designation string  `json:"designation"`
	UnitPrice   float64 `json:"unitPrice" gorm:"type:numeric(14,2);not null"`
	Amount      float64 `json:"amount" gorm:"type:numeric(14,2)"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	return
}

func (item *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return
}

// Lines returns the arithmetic view of the items, in order.
func (invoice *Invoice) Lines() []billing.Line {
	lines := make([]billing.Line, len(invoice.Items))
	for i, item := range invoice.Items {
		lines[i] = billing.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// Totals derives the totals from the current items and fees without
// touching the stored values.
func (invoice *Invoice) Totals() (billing.Totals, error) {
	return billing.ComputeTotals(invoice.Lines(), invoice.DeliveryFees, invoice.LaborCost)
}

// Recompute refreshes every derived field: item amounts, positions, ids and
// the invoice totals. Stored values are never trusted.
func (invoice *Invoice) Recompute() error {
	for i := range invoice.Items {
		item := &invoice.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.InvoiceID = invoice.ID
		item.Position = i
		item.Amount = billing.LineAmount(billing.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	totals, err := invoice.Totals()
	if err != nil {
		return err
	}
	invoice.Subtotal = totals.Subtotal
	invoice.Total = totals.Total
	invoice.TotalInWords = totals.TotalInWords
	return nil
}

// Clone returns a deep copy; the items slice is not shared.
func (invoice Invoice) Clone() Invoice {
	if invoice.Items != nil {
		items := make([]InvoiceItem, len(invoice.Items))
		copy(items, invoice.Items)
		invoice.Items = items
	}
	return invoice
}

// DateOf returns the calendar date of the invoice.
func (invoice *Invoice) DateOf() time.Time {
	return time.Time(invoice.Date)
}
