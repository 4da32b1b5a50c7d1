package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facturation-backend/models"
	"facturation-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceStore persists invoices in Postgres.
type GormInvoiceStore struct {
	db *gorm.DB
}

func NewGormInvoiceStore(db *gorm.DB) *GormInvoiceStore {
	return &GormInvoiceStore{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (s *GormInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		// ids are needed before insert so items can reference the invoice
		invoice.ID = uuid.NewString()
	}
	if err := invoice.Recompute(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("could not create invoice: %w", err)
		}
		return nil
	})
}

func (s *GormInvoiceStore) Get(ctx context.Context, id string) (models.Invoice, error) {
	var invoice models.Invoice
	if err := preloadItems(s.db.WithContext(ctx)).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Invoice{}, ErrInvoiceNotFound
		}
		return models.Invoice{}, fmt.Errorf("could not load invoice: %w", err)
	}
	return invoice, nil
}

func (s *GormInvoiceStore) List(ctx context.Context, filter ListFilter) ([]models.Invoice, error) {
	q := preloadItems(s.db.WithContext(ctx)).Model(&models.Invoice{})
	if filter.HasRange() {
		q = q.Where("date >= ? AND date <= ?", truncateDay(*filter.From), truncateDay(*filter.To)).
			Order("date DESC").Order("created_at DESC")
	} else {
		q = q.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("could not list invoices: %w", err)
	}
	return invoices, nil
}

func (s *GormInvoiceStore) Update(ctx context.Context, id string, patch InvoicePatch) (models.Invoice, error) {
	// the stored columns and the derived totals must see the same amounts
	patch = patch.Rounded()

	var updated models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Invoice
		if err := preloadItems(tx).First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if err := patch.Apply(&current); err != nil {
			return err
		}

		updates := utils.ColumnUpdates(patch)
		updates["updated_at"] = time.Now().UTC()
		if patch.TouchesTotals() {
			updates["subtotal"] = current.Subtotal
			updates["total"] = current.Total
			updates["total_in_words"] = current.TotalInWords
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("could not update invoice: %w", err)
		}

		if patch.Items != nil {
			if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("could not replace invoice items: %w", err)
			}
			if len(current.Items) > 0 {
				if err := tx.Create(&current.Items).Error; err != nil {
					return fmt.Errorf("could not replace invoice items: %w", err)
				}
			}
		}

		return preloadItems(tx).First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return updated, nil
}

func (s *GormInvoiceStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// items go first; the FK cascade only exists when gorm created it
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("could not delete invoice items: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Invoice{})
		if res.Error != nil {
			return fmt.Errorf("could not delete invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvoiceNotFound
		}
		return nil
	})
}

func (s *GormInvoiceStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("could not count invoices: %w", err)
	}
	return n, nil
}
