package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"facturation-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIdempotencyStore keeps idempotency keys in Postgres.
type GormIdempotencyStore struct {
	db *gorm.DB
}

func NewGormIdempotencyStore(db *gorm.DB) *GormIdempotencyStore {
	return &GormIdempotencyStore{db: db}
}

func (s *GormIdempotencyStore) Reserve(ctx context.Context, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	db := s.db.WithContext(ctx)

	// Insert "pending"; the unique key decides which concurrent caller wins.
	rec.ResponseStatus = 0
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return models.IdempotencyKey{}, false, fmt.Errorf("idempotency create failed: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return rec, true, nil
	}

	var existing models.IdempotencyKey
	if err := db.Where("key = ?", rec.Key).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the holder released it before this read
			return models.IdempotencyKey{}, false, ErrIdempotencyInProgress
		}
		return models.IdempotencyKey{}, false, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	return existing, false, nil
}

func (s *GormIdempotencyStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.IdempotencyKey{}).
		Where("key = ?", key).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   body,
			"completed_at":    &now,
		}).Error
}

func (s *GormIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("key = ? AND response_status = 0", key).
		Delete(&models.IdempotencyKey{}).Error
}

// MemoryIdempotencyStore is the in-process counterpart of GormIdempotencyStore.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]models.IdempotencyKey
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]models.IdempotencyKey)}
}

func (s *MemoryIdempotencyStore) Reserve(ctx context.Context, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.IdempotencyKey{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.keys[rec.Key]; ok {
		return existing, false, nil
	}
	rec.ResponseStatus = 0
	rec.CreatedAt = time.Now().UTC()
	s.keys[rec.Key] = rec
	return rec, true, nil
}

func (s *MemoryIdempotencyStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.keys[key]
	if !ok {
		return fmt.Errorf("idempotency key %q not reserved", key)
	}
	now := time.Now().UTC()
	rec.ResponseStatus = status
	rec.ResponseBody = append([]byte(nil), body...)
	rec.CompletedAt = &now
	s.keys[key] = rec
	return nil
}

func (s *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.keys[key]; ok && !rec.Completed() {
		delete(s.keys, key)
	}
	return nil
}
