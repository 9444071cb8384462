package store

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/safar/pharmsync/internal/models"
	"github.com/shopspring/decimal"
)

func TestGenerateShape(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for seed := int64(1); seed <= 25; seed++ {
		s := &Seeder{Rand: rand.New(rand.NewSource(seed)), Now: func() time.Time { return now }}
		state, err := s.Generate()
		if err != nil {
			t.Fatalf("seed %d: Generate: %v", seed, err)
		}

		if len(state.Medicines) != 12 || len(state.Suppliers) != 17 || len(state.Pharmacies) != 3 {
			t.Fatalf("seed %d: unexpected roster sizes %d/%d/%d", seed,
				len(state.Medicines), len(state.Suppliers), len(state.Pharmacies))
		}
		if len(state.SupplierMedicines) != 20 || len(state.Orders) != 8 {
			t.Fatalf("seed %d: expected 20 listings and 8 orders, got %d and %d", seed,
				len(state.SupplierMedicines), len(state.Orders))
		}
		if len(state.Ratings) != 0 {
			t.Errorf("seed %d: expected no ratings", seed)
		}
		if len(state.Notifications) != 1 || state.Notifications[0].User != nil {
			t.Errorf("seed %d: expected one broadcast notification", seed)
		}

		listings := map[string]models.SupplierMedicine{}
		for i, sm := range state.SupplierMedicines {
			listings[sm.ID] = sm
			if sm.SupplierID != state.Suppliers[i%17].ID {
				t.Errorf("seed %d: listing %d not assigned round-robin", seed, i)
			}
			if sm.Price.LessThan(decimal.NewFromInt(6)) || sm.Price.GreaterThan(decimal.NewFromInt(44)) {
				t.Errorf("seed %d: price %s out of range", seed, sm.Price)
			}
			if sm.Price.Exponent() < -2 {
				t.Errorf("seed %d: price %s has more than 2 decimals", seed, sm.Price)
			}
			if sm.Stock < 10 || sm.Stock >= 230 {
				t.Errorf("seed %d: stock %d out of range", seed, sm.Stock)
			}
		}

		for idx, o := range state.Orders {
			wantStatus := []models.OrderStatus{"pending", "approved", "rejected"}[idx%3]
			if o.Status != wantStatus {
				t.Errorf("seed %d: order %d status %s, want %s", seed, idx, o.Status, wantStatus)
			}
			if !o.CreatedAt.Equal(now.Add(-time.Duration(idx) * 11 * time.Hour)) {
				t.Errorf("seed %d: order %d createdAt %v", seed, idx, o.CreatedAt)
			}
			if (idx%2 == 0) != (o.Note == SeedOrderNote) {
				t.Errorf("seed %d: order %d note %q", seed, idx, o.Note)
			}
			if o.Status == models.OrderStatusPending && o.DecisionNote != "" {
				t.Errorf("seed %d: pending order %d has decision note", seed, idx)
			}
			if len(o.Items) < 1 || len(o.Items) > 3 {
				t.Errorf("seed %d: order %d has %d items", seed, idx, len(o.Items))
			}
			for _, it := range o.Items {
				sm, ok := listings[it.SupplierMedicineID]
				if !ok {
					t.Fatalf("seed %d: order item references unknown listing", seed)
				}
				if sm.SupplierID != o.SupplierID {
					t.Errorf("seed %d: order %d item from another supplier", seed, idx)
				}
				if it.Quantity < 1 || it.Quantity > sm.Stock {
					t.Errorf("seed %d: quantity %d exceeds stock %d", seed, it.Quantity, sm.Stock)
				}
				if !it.UnitPrice.Equal(sm.Price) {
					t.Errorf("seed %d: unit price %s != listing price %s", seed, it.UnitPrice, sm.Price)
				}
			}
		}
	}
}

func TestGenerateIDPrefixes(t *testing.T) {
	state, err := NewSeeder(99).Generate()
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		prefix string
		id     string
	}{
		{"med_", state.Medicines[0].ID},
		{"sup_", state.Suppliers[0].ID},
		{"pha_", state.Pharmacies[0].ID},
		{"sm_", state.SupplierMedicines[0].ID},
		{"ord_", state.Orders[0].ID},
		{"oi_", state.Orders[0].Items[0].ID},
		{"ntf_", state.Notifications[0].ID},
	}
	for _, c := range checks {
		if !strings.HasPrefix(c.id, c.prefix) {
			t.Errorf("Expected id %q to start with %q", c.id, c.prefix)
		}
	}
}

func TestSeedCredentials(t *testing.T) {
	state, err := NewSeeder(3).Generate()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range state.Suppliers {
		if s.Password != SeedSupplierPassword {
			t.Errorf("Supplier %s has password %q", s.Email, s.Password)
		}
	}
	if state.Pharmacies[0].Email != "pharmacy1@demo.com" || state.Pharmacies[0].Password != "demo1" {
		t.Errorf("Unexpected first pharmacy %+v", state.Pharmacies[0])
	}
}
