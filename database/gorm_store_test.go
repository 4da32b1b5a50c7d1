package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"facturation-backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a migrated sqlite database private to the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "facturation.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// one connection: sqlite serialises writers anyway
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func rangeFilter(from, to time.Time) ListFilter {
	return ListFilter{From: &from, To: &to}
}

func gormInvoice(number string, date time.Time, created time.Time) *models.Invoice {
	inv := newInvoice(number, date)
	inv.CreatedAt = created
	return inv
}

func TestGormStoreCreateAndGet(t *testing.T) {
	s := NewGormInvoiceStore(openTestDB(t))
	ctx := context.Background()

	inv := newInvoice("F-1", day(2024, 5, 1))
	inv.Subtotal = 1 // never trusted
	if err := s.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subtotal != 35000 || got.Total != 40000 || got.TotalInWords != "quarante mille francs CFA" {
		t.Errorf("derived fields: %v / %v / %q", got.Subtotal, got.Total, got.TotalInWords)
	}
	if len(got.Items) != 2 || got.Items[0].Designation != "Pneu" || got.Items[1].Designation != "Valve" {
		t.Fatalf("items: %+v", got.Items)
	}
	if got.Items[0].Amount != 30000 || got.Items[0].InvoiceID != inv.ID {
		t.Errorf("first item: %+v", got.Items[0])
	}
	if d := got.DateOf().Format("2006-01-02"); d != "2024-05-01" {
		t.Errorf("date: %s", d)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("Get missing: %v", err)
	}
}

func TestGormStoreUpdate(t *testing.T) {
	s := NewGormInvoiceStore(openTestDB(t))
	ctx := context.Background()

	inv := newInvoice("F-1", day(2024, 5, 1))
	if err := s.Create(ctx, inv); err != nil {
		t.Fatal(err)
	}

	t.Run("fields without totals", func(t *testing.T) {
		name := "Garage Central"
		got, err := s.Update(ctx, inv.ID, InvoicePatch{ClientName: &name})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.ClientName != name || got.Total != 40000 || len(got.Items) != 2 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("fees are rounded once", func(t *testing.T) {
		fees := 10.005
		got, err := s.Update(ctx, inv.ID, InvoicePatch{DeliveryFees: &fees})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.DeliveryFees != 10.01 || got.Total != 38010.01 || got.TotalInWords != "trente-huit mille dix francs CFA" {
			t.Errorf("got fees %v total %v words %q", got.DeliveryFees, got.Total, got.TotalInWords)
		}
	})

	t.Run("items replaced in order", func(t *testing.T) {
		// same positions as the stored items: the unique (invoice_id, position)
		// index must not trip over the replacement
		items := []models.InvoiceItem{
			{Quantity: 1, Designation: "Batterie", UnitPrice: 40000},
			{Quantity: 4, Designation: "Bougie", UnitPrice: 2500},
			{Quantity: 1, Designation: "Courroie", UnitPrice: 8000},
		}
		got, err := s.Update(ctx, inv.ID, InvoicePatch{Items: &items})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		want := []string{"Batterie", "Bougie", "Courroie"}
		if len(got.Items) != len(want) {
			t.Fatalf("items: got %d, want %d", len(got.Items), len(want))
		}
		for i, item := range got.Items {
			if item.Designation != want[i] || item.Position != i {
				t.Errorf("item %d: %s at %d", i, item.Designation, item.Position)
			}
		}
		if got.Subtotal != 58000 || got.Total != 61010.01 {
			t.Errorf("totals: %v / %v", got.Subtotal, got.Total)
		}

		var stored int64
		s.db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&stored)
		if stored != 3 {
			t.Errorf("stored items: got %d, want 3", stored)
		}
	})

	t.Run("reload matches", func(t *testing.T) {
		got, err := s.Get(ctx, inv.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total != 61010.01 || got.ClientName != "Garage Central" || got.Items[2].Designation != "Courroie" {
			t.Errorf("reloaded: %+v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := s.Update(ctx, "missing", InvoicePatch{}); !errors.Is(err, ErrInvoiceNotFound) {
			t.Errorf("got %v", err)
		}
	})
}

func TestGormStoreListDeleteCount(t *testing.T) {
	s := NewGormInvoiceStore(openTestDB(t))
	ctx := context.Background()

	base := day(2024, 6, 1)
	for i, in := range []struct {
		number string
		date   time.Time
	}{
		{"F-1", day(2024, 1, 10)},
		{"F-2", day(2024, 3, 5)},
		{"F-3", day(2024, 1, 20)},
	} {
		if err := s.Create(ctx, gormInvoice(in.number, in.date, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"newest first", ListFilter{}, []string{"F-3", "F-2", "F-1"}},
		{"limit", ListFilter{Limit: 2}, []string{"F-3", "F-2"}},
		{"range by date", rangeFilter(day(2024, 1, 1), day(2024, 1, 31)), []string{"F-3", "F-1"}},
		{"inclusive bounds", rangeFilter(day(2024, 3, 5), day(2024, 3, 5)), []string{"F-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var got []string
			for _, inv := range list {
				got = append(got, inv.InvoiceNumber)
				if len(inv.Items) != 2 {
					t.Errorf("%s: items not preloaded", inv.InvoiceNumber)
				}
			}
			if !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	list, _ := s.List(ctx, ListFilter{Limit: 1})
	if err := s.Delete(ctx, list[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, list[0].ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 2 {
		t.Errorf("Count: %d, %v", n, err)
	}
	var orphans int64
	s.db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", list[0].ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("items left behind: %d", orphans)
	}
}

func TestGormIdempotencyStore(t *testing.T) {
	testIdempotencyStore(t, NewGormIdempotencyStore(openTestDB(t)))
}
