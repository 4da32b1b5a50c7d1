package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"facturation-backend/models"

	"github.com/google/uuid"
)

type memoryEntry struct {
	invoice models.Invoice
	seq     uint64
}

// MemoryInvoiceStore keeps invoices in process memory. Values handed in or
// out are deep copies.
type MemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]memoryEntry
	seq      uint64
	now      func() time.Time
}

func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{
		invoices: make(map[string]memoryEntry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if err := invoice.Recompute(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	s.seq++
	s.invoices[invoice.ID] = memoryEntry{invoice: invoice.Clone(), seq: s.seq}
	return nil
}

func (s *MemoryInvoiceStore) Get(ctx context.Context, id string) (models.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return models.Invoice{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.invoices[id]
	if !ok {
		return models.Invoice{}, ErrInvoiceNotFound
	}
	return e.invoice.Clone(), nil
}

func (s *MemoryInvoiceStore) List(ctx context.Context, filter ListFilter) ([]models.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]memoryEntry, 0, len(s.invoices))
	for _, e := range s.invoices {
		if filter.Contains(e.invoice.DateOf()) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	byDate := filter.HasRange()
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if byDate {
			if da, db := a.invoice.DateOf(), b.invoice.DateOf(); !da.Equal(db) {
				return da.After(db)
			}
		}
		if !a.invoice.CreatedAt.Equal(b.invoice.CreatedAt) {
			return a.invoice.CreatedAt.After(b.invoice.CreatedAt)
		}
		return a.seq > b.seq
	})

	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	out := make([]models.Invoice, len(entries))
	for i, e := range entries {
		out[i] = e.invoice.Clone()
	}
	return out, nil
}

func (s *MemoryInvoiceStore) Update(ctx context.Context, id string, patch InvoicePatch) (models.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return models.Invoice{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.invoices[id]
	if !ok {
		return models.Invoice{}, ErrInvoiceNotFound
	}

	current := e.invoice.Clone()
	if err := patch.Apply(&current); err != nil {
		return models.Invoice{}, err
	}
	current.UpdatedAt = s.now()
	if current.UpdatedAt.Before(current.CreatedAt) {
		current.UpdatedAt = current.CreatedAt
	}
	e.invoice = current
	s.invoices[id] = e
	return current.Clone(), nil
}

func (s *MemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return ErrInvoiceNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *MemoryInvoiceStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.invoices)), nil
}
