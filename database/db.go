package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Invoices and Idempotency are the stores used by the HTTP layer; main wires
// them to Postgres or to the in-memory implementations.
var (
	Invoices    InvoiceStore
	Idempotency IdempotencyStore
)

// Connect opens the Postgres pool and assigns DB.
func Connect(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	zap.L().Info("database connected")
	return nil
}

// UsePostgres wires the gorm-backed stores on DB.
func UsePostgres() {
	Invoices = NewGormInvoiceStore(DB)
	Idempotency = NewGormIdempotencyStore(DB)
}

// UseMemory wires the in-memory stores.
func UseMemory() {
	Invoices = NewMemoryInvoiceStore()
	Idempotency = NewMemoryIdempotencyStore()
}
