package database

import (
	"context"
	"testing"

	"facturation-backend/models"
)

// testIdempotencyStore runs the same checks against every IdempotencyStore.
func testIdempotencyStore(t *testing.T, s IdempotencyStore) {
	t.Helper()
	ctx := context.Background()

	first, created, err := s.Reserve(ctx, models.IdempotencyKey{Key: "k1", RequestHash: "h1"})
	if err != nil || !created || first.Completed() {
		t.Fatalf("Reserve: %+v, created %v, %v", first, created, err)
	}

	pending, created, err := s.Reserve(ctx, models.IdempotencyKey{Key: "k1", RequestHash: "h1"})
	if err != nil || created || pending.Completed() {
		t.Errorf("Reserve while pending: %+v, created %v, %v", pending, created, err)
	}

	if err := s.Complete(ctx, "k1", 201, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	again, created, _ := s.Reserve(ctx, models.IdempotencyKey{Key: "k1", RequestHash: "other"})
	if created || !again.Completed() || again.RequestHash != "h1" || string(again.ResponseBody) != `{"ok":true}` {
		t.Errorf("Reserve after Complete: %+v, created %v", again, created)
	}

	// completed keys survive Release; pending ones are freed
	if err := s.Release(ctx, "k1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if kept, _, _ := s.Reserve(ctx, models.IdempotencyKey{Key: "k1", RequestHash: "h1"}); !kept.Completed() {
		t.Error("Release dropped a completed key")
	}

	if _, _, err := s.Reserve(ctx, models.IdempotencyKey{Key: "k2", RequestHash: "h2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Release(ctx, "k2"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, created, err := s.Reserve(ctx, models.IdempotencyKey{Key: "k2", RequestHash: "h2b"}); err != nil || !created {
		t.Errorf("Reserve after Release: created %v, %v", created, err)
	}
}
