package controllers

import (
	"time"

	"facturation-backend/billing"
	"facturation-backend/database"
	"facturation-backend/models"
	"facturation-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

type InvoiceItemRequest struct {
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Designation string  `json:"designation" validate:"required,max=255"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

// InvoiceRequest is the body of POST /invoices.
type InvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber" validate:"required,max=64"`
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
	ClientName    string               `json:"clientName" validate:"required,max=255"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryFees  float64              `json:"deliveryFees" validate:"gte=0"`
	LaborCost     float64              `json:"laborCost" validate:"gte=0"`
}

// InvoiceUpdateRequest is the body of PUT /invoices/:id; absent fields are
// left unchanged.
type InvoiceUpdateRequest struct {
	InvoiceNumber *string               `json:"invoiceNumber" validate:"omitempty,min=1,max=64"`
	Date          *string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ClientName    *string               `json:"clientName" validate:"omitempty,min=1,max=255"`
	Items         *[]InvoiceItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	DeliveryFees  *float64              `json:"deliveryFees" validate:"omitempty,gte=0"`
	LaborCost     *float64              `json:"laborCost" validate:"omitempty,gte=0"`
}

// TotalsRequest is the body of POST /invoices/totals.
type TotalsRequest struct {
	Items        []InvoiceItemRequest `json:"items" validate:"dive"`
	DeliveryFees float64              `json:"deliveryFees" validate:"gte=0"`
	LaborCost    float64              `json:"laborCost" validate:"gte=0"`
}

func toItems(reqs []InvoiceItemRequest) []models.InvoiceItem {
	items := make([]models.InvoiceItem, len(reqs))
	for i, r := range reqs {
		items[i] = models.InvoiceItem{
			Quantity:    r.Quantity,
			Designation: r.Designation,
			UnitPrice:   r.UnitPrice,
		}
	}
	return items
}

func toLines(reqs []InvoiceItemRequest) []billing.Line {
	lines := make([]billing.Line, len(reqs))
	for i, r := range reqs {
		lines[i] = billing.Line{Quantity: r.Quantity, UnitPrice: r.UnitPrice}
	}
	return lines
}

// parseDate expects a value already validated as YYYY-MM-DD.
func parseDate(s string) (datatypes.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return datatypes.Date{}, fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return datatypes.Date(t), nil
}

func (r InvoiceRequest) toInvoice() (models.Invoice, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return models.Invoice{}, err
	}
	return models.Invoice{
		InvoiceNumber: r.InvoiceNumber,
		Date:          date,
		ClientName:    r.ClientName,
		Items:         toItems(r.Items),
		DeliveryFees:  r.DeliveryFees,
		LaborCost:     r.LaborCost,
	}, nil
}

func (r InvoiceUpdateRequest) toPatch() (database.InvoicePatch, error) {
	patch := database.InvoicePatch{
		InvoiceNumber: r.InvoiceNumber,
		ClientName:    r.ClientName,
		DeliveryFees:  r.DeliveryFees,
		LaborCost:     r.LaborCost,
	}
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return database.InvoicePatch{}, err
		}
		patch.Date = &date
	}
	if r.Items != nil {
		items := toItems(*r.Items)
		patch.Items = &items
	}
	return patch, nil
}

// listFilter reads ?from=&to=&limit= (dates as YYYY-MM-DD).
func listFilter(c *fiber.Ctx, defaultLimit int) (database.ListFilter, error) {
	var filter database.ListFilter
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "invalid "+q.name+" date, expected YYYY-MM-DD")
		}
		*q.dst = &t
	}
	if filter.HasRange() && filter.From.After(*filter.To) {
		return filter, fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	}
	filter.Limit = utils.ParseIntDefault(c.Query("limit"), defaultLimit)
	return filter, nil
}
