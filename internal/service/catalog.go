package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/safar/pharmsync/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
	SortByStock SortKey = "stock"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// CatalogQuery filters one supplier's listings. Zero values mean no filter,
// sort by name ascending.
type CatalogQuery struct {
	Search        string
	SortBy        SortKey
	SortDir       SortDir
	OnlyAvailable bool
}

// ListListings returns every listing of every supplier.
func (s *Service) ListListings(ctx context.Context) ([]models.SupplierMedicine, error) {
	var out []models.SupplierMedicine
	err := s.store.View(ctx, func(state *models.AppState) error {
		out = state.SupplierMedicines
		return nil
	})
	return out, err
}

// ListSupplierMedicines joins a supplier's listings with their medicine and the
// supplier profile, then filters and sorts them.
func (s *Service) ListSupplierMedicines(ctx context.Context, supplierID string, q CatalogQuery) ([]models.SupplierMedicineWithRelations, error) {
	supplierID = strings.TrimSpace(supplierID)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := []models.SupplierMedicineWithRelations{}
	err := s.store.View(ctx, func(state *models.AppState) error {
		si, ok := findSupplier(state, supplierID)
		if !ok {
			return ErrSupplierNotFound
		}
		profile := state.Suppliers[si].Profile()

		for _, sm := range state.SupplierMedicines {
			if sm.SupplierID != supplierID {
				continue
			}
			if q.OnlyAvailable && !sm.Available {
				continue
			}
			mi, ok := findMedicine(state, sm.MedicineID)
			if !ok {
				return ErrMedicineNotFound
			}
			med := state.Medicines[mi]
			out = append(out, models.SupplierMedicineWithRelations{
				SupplierMedicine: sm,
				Medicine:         med,
				Supplier:         profile,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if search != "" {
		filtered := out[:0]
		for _, x := range out {
			haystack := strings.ToLower(x.Medicine.Name + " " + x.Medicine.Form + " " + x.Medicine.Dosage)
			if strings.Contains(haystack, search) {
				filtered = append(filtered, x)
			}
		}
		out = filtered
	}

	sortListings(out, q.SortBy, q.SortDir)
	return out, nil
}

func sortListings(list []models.SupplierMedicineWithRelations, by SortKey, dir SortDir) {
	sign := 1
	if dir == SortDesc {
		sign = -1
	}
	col := collate.New(language.Und)

	sort.SliceStable(list, func(i, j int) bool {
		var c int
		switch by {
		case SortByPrice:
			c = list[i].Price.Cmp(list[j].Price)
		case SortByStock:
			c = compareInt(list[i].Stock, list[j].Stock)
		default:
			c = col.CompareString(list[i].Medicine.Name, list[j].Medicine.Name)
		}
		return c*sign < 0
	})
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MaxStock is the largest stock level a listing can hold.
const MaxStock = math.MaxInt32

// clampStock floors a requested stock level into [0, MaxStock].
func clampStock(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= MaxStock:
		return MaxStock
	}
	return int(math.Floor(v))
}

func clampPrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

func (s *Service) CreateSupplierMedicine(ctx context.Context, req models.CreateSupplierMedicineRequest) (*models.SupplierMedicine, error) {
	if err := schema.Validate("supplierMedicines.create", req); err != nil {
		return nil, err
	}

	var created models.SupplierMedicine
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, ok := findSupplier(tx.State, req.SupplierID); !ok {
			return ErrSupplierNotFound
		}
		if _, ok := findMedicine(tx.State, req.MedicineID); !ok {
			return ErrMedicineNotFound
		}

		created = models.SupplierMedicine{
			ID:         s.newID(models.PrefixSupplierMedicine),
			SupplierID: req.SupplierID,
			MedicineID: req.MedicineID,
			Price:      clampPrice(req.Price),
			Stock:      clampStock(req.Stock),
			Available:  req.Available,
		}
		if err := schema.Validate("supplierMedicines.create", created); err != nil {
			return err
		}

		tx.State.SupplierMedicines = append([]models.SupplierMedicine{created}, tx.State.SupplierMedicines...)
		s.pushNotification(tx.State, "Medicine listed", "A medicine listing was added to your catalog.",
			&models.CurrentUser{Role: models.RoleSupplier, UserID: req.SupplierID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSupplierMedicine merges only the provided fields into the listing.
func (s *Service) UpdateSupplierMedicine(ctx context.Context, id string, req models.UpdateSupplierMedicineRequest) (*models.SupplierMedicine, error) {
	id = strings.TrimSpace(id)

	var updated models.SupplierMedicine
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		idx, ok := findListing(tx.State, id)
		if !ok {
			return ErrSupplierMedicineNotFound
		}

		next := tx.State.SupplierMedicines[idx]
		if req.Price != nil {
			next.Price = clampPrice(*req.Price)
		}
		if req.Stock != nil {
			next.Stock = clampStock(*req.Stock)
		}
		if req.Available != nil {
			next.Available = *req.Available
		}
		if err := schema.Validate("supplierMedicines.update", next); err != nil {
			return err
		}

		tx.State.SupplierMedicines[idx] = next
		updated = next
		s.pushNotification(tx.State, "Catalog updated", "A medicine listing was updated.",
			&models.CurrentUser{Role: models.RoleSupplier, UserID: next.SupplierID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteSupplierMedicine(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	return s.store.Update(ctx, func(tx *store.Tx) error {
		idx, ok := findListing(tx.State, id)
		if !ok {
			return ErrSupplierMedicineNotFound
		}
		current := tx.State.SupplierMedicines[idx]

		tx.State.SupplierMedicines = append(tx.State.SupplierMedicines[:idx:idx], tx.State.SupplierMedicines[idx+1:]...)
		s.pushNotification(tx.State, "Listing removed", "A medicine listing was deleted from your catalog.",
			&models.CurrentUser{Role: models.RoleSupplier, UserID: current.SupplierID})
		return nil
	})
}
