package database

import (
	"fmt"

	"facturation-backend/models"

	"gorm.io/gorm"
)

// Migrate applies idempotent schema migrations:
// - AutoMigrate (tables/columns)
// - Indexes (item order, listing by date)
// - Basic CHECK constraints (Postgres only)
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoice_items_invoice_position ON invoice_items (invoice_id, position)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_date_created ON invoices (date DESC, created_at DESC)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent, Postgres DO blocks) ---
		if tx.Dialector.Name() != "postgres" {
			return nil
		}
		checks := []struct{ table, name, expr string }{
			{"invoice_items", "chk_invoice_items_quantity_nonneg", "quantity >= 0"},
			{"invoice_items", "chk_invoice_items_unit_price_nonneg", "unit_price >= 0"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = '%[1]s'::regclass
					  AND conname  = '%[2]s'
				) THEN
					ALTER TABLE %[1]s
					ADD CONSTRAINT %[2]s
					CHECK (%[3]s);
				END IF;
			END $$;`, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", c.name, err)
			}
		}

		return nil
	})
}
