package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"facturation-backend/models"

	"gorm.io/datatypes"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newInvoice(number string, date time.Time) *models.Invoice {
	return &models.Invoice{
		InvoiceNumber: number,
		Date:          datatypes.Date(date),
		ClientName:    "Client " + number,
		Items: []models.InvoiceItem{
			{Quantity: 2, Designation: "Pneu", UnitPrice: 15000},
			{Quantity: 1, Designation: "Valve", UnitPrice: 5000},
		},
		DeliveryFees: 2000,
		LaborCost:    3000,
	}
}

// tickingStore returns a memory store whose clock advances one second per call.
func tickingStore() *MemoryInvoiceStore {
	s := NewMemoryInvoiceStore()
	base := day(2024, 1, 1)
	var n int
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return s
}

func TestMemoryStoreCreateDerivesTotals(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	inv := newInvoice("F-1", day(2024, 5, 1))
	inv.Total = 1 // never trusted
	if err := s.Create(ctx, inv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	got, err := s.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subtotal != 35000 || got.Total != 40000 || got.TotalInWords != "quarante mille francs CFA" {
		t.Errorf("derived fields: got %v / %v / %q", got.Subtotal, got.Total, got.TotalInWords)
	}
	if got.Items[0].Amount != 30000 || got.Items[1].Designation != "Valve" {
		t.Errorf("items: got %+v", got.Items)
	}
	if got.CreatedAt.IsZero() || !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("timestamps: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	inv := newInvoice("F-1", day(2024, 5, 1))
	if err := s.Create(ctx, inv); err != nil {
		t.Fatal(err)
	}

	inv.Items[0].Designation = "mutated after create"
	got, _ := s.Get(ctx, inv.ID)
	got.Items[1].Designation = "mutated after get"

	again, _ := s.Get(ctx, inv.ID)
	if again.Items[0].Designation != "Pneu" || again.Items[1].Designation != "Valve" {
		t.Errorf("store state leaked through a shared slice: %+v", again.Items)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("fees recompute totals", func(t *testing.T) {
		s := tickingStore()
		inv := newInvoice("F-1", day(2024, 5, 1))
		_ = s.Create(ctx, inv)

		labor := 13000.0
		got, err := s.Update(ctx, inv.ID, InvoicePatch{LaborCost: &labor})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.Total != 50000 || got.TotalInWords != "cinquante mille francs CFA" {
			t.Errorf("totals: got %v %q", got.Total, got.TotalInWords)
		}
		if !got.UpdatedAt.After(got.CreatedAt) {
			t.Errorf("UpdatedAt not refreshed: %v vs %v", got.UpdatedAt, got.CreatedAt)
		}
	})

	t.Run("items replaced in order", func(t *testing.T) {
		s := tickingStore()
		inv := newInvoice("F-1", day(2024, 5, 1))
		_ = s.Create(ctx, inv)

		items := []models.InvoiceItem{
			{Quantity: 1, Designation: "Batterie", UnitPrice: 45000},
			{Quantity: 4, Designation: "Bougie", UnitPrice: 2500},
		}
		got, err := s.Update(ctx, inv.ID, InvoicePatch{Items: &items})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(got.Items) != 2 || got.Items[0].Designation != "Batterie" || got.Items[1].Amount != 10000 {
			t.Errorf("items: got %+v", got.Items)
		}
		if got.Subtotal != 55000 || got.Total != 60000 {
			t.Errorf("totals: got %v / %v", got.Subtotal, got.Total)
		}
	})

	t.Run("header only keeps totals", func(t *testing.T) {
		s := tickingStore()
		inv := newInvoice("F-1", day(2024, 5, 1))
		_ = s.Create(ctx, inv)

		name := "Garage Central"
		got, err := s.Update(ctx, inv.ID, InvoicePatch{ClientName: &name})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got.ClientName != name || got.Total != 40000 {
			t.Errorf("got client %q total %v", got.ClientName, got.Total)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		s := tickingStore()
		if _, err := s.Update(ctx, "missing", InvoicePatch{}); !errors.Is(err, ErrInvoiceNotFound) {
			t.Errorf("got %v, want ErrInvoiceNotFound", err)
		}
	})
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := tickingStore()

	// created in this order: A (Mar 10), B (Jan 5), C (Feb 20)
	a := newInvoice("A", day(2024, 3, 10))
	b := newInvoice("B", day(2024, 1, 5))
	c := newInvoice("C", day(2024, 2, 20))
	for _, inv := range []*models.Invoice{a, b, c} {
		if err := s.Create(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}

	numbers := func(invs []models.Invoice) []string {
		out := make([]string, len(invs))
		for i, inv := range invs {
			out[i] = inv.InvoiceNumber
		}
		return out
	}

	from, to := day(2024, 1, 5), day(2024, 2, 29)
	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"newest created first", ListFilter{}, []string{"C", "B", "A"}},
		{"limit", ListFilter{Limit: 2}, []string{"C", "B"}},
		{"range ordered by date", ListFilter{From: &from, To: &to}, []string{"C", "B"}},
		{"half range is ignored", ListFilter{From: &from}, []string{"C", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if g := numbers(got); !equal(g, tt.want) {
				t.Errorf("List: got %v, want %v", g, tt.want)
			}
		})
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryStoreDeleteAndCount(t *testing.T) {
	ctx := context.Background()
	s := tickingStore()
	inv := newInvoice("F-1", day(2024, 5, 1))
	_ = s.Create(ctx, inv)
	_ = s.Create(ctx, newInvoice("F-2", day(2024, 5, 2)))

	if n, _ := s.Count(ctx); n != 2 {
		t.Fatalf("Count: got %d, want 2", n)
	}
	if err := s.Delete(ctx, inv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, inv.ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("Get after delete: got %v", err)
	}
	if err := s.Delete(ctx, inv.ID); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("second Delete: got %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count: got %d, want 1", n)
	}
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryInvoiceStore()
	if err := s.Create(ctx, newInvoice("F-1", day(2024, 5, 1))); !errors.Is(err, context.Canceled) {
		t.Errorf("Create: got %v, want context.Canceled", err)
	}
}

func TestListFilterContains(t *testing.T) {
	from, to := day(2024, 1, 1), day(2024, 1, 31)
	f := ListFilter{From: &from, To: &to}

	tests := []struct {
		date time.Time
		want bool
	}{
		{day(2024, 1, 1), true},
		{day(2024, 1, 31).Add(23 * time.Hour), true},
		{day(2023, 12, 31), false},
		{day(2024, 2, 1), false},
	}
	for _, tt := range tests {
		if got := f.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%v): got %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestMemoryIdempotencyStore(t *testing.T) {
	s := NewMemoryIdempotencyStore()
	testIdempotencyStore(t, s)

	if err := s.Complete(context.Background(), "unknown", 200, nil); err == nil {
		t.Error("Complete on unknown key: want error")
	}
}

func TestPatchRoundsBeforeDerivingTotals(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	inv := newInvoice("F-1", day(2024, 5, 1))
	if err := s.Create(ctx, inv); err != nil {
		t.Fatal(err)
	}

	fees := 10.005
	got, err := s.Update(ctx, inv.ID, InvoicePatch{DeliveryFees: &fees})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.DeliveryFees != 10.01 || got.Total != 38010.01 {
		t.Errorf("got fees %v total %v, want 10.01 / 38010.01", got.DeliveryFees, got.Total)
	}
	if fees != 10.005 {
		t.Errorf("caller's value modified: %v", fees)
	}
}
