package store

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/shopspring/decimal"
)

const (
	seedListings         = 20
	seedOrders           = 8
	seedOrderSpacing     = 11 * time.Hour
	seedUnavailableRatio = 0.12
)

const (
	SeedOrderNote    = "Please pack with batch/expiry labels visible."
	SeedApprovedNote = "Approved — ready for dispatch."
	SeedRejectedNote = "Rejected — insufficient stock for requested quantity."
	WelcomeTitle     = "Welcome to PharmSync"
	WelcomeMessage   = "Demo data is seeded. Log in as a supplier or pharmacy to explore workflows."
)

var seedMedicines = []models.Medicine{
	{Name: "Amoxicillin", Dosage: "500 mg", Form: "Capsule"},
	{Name: "Ibuprofen", Dosage: "200 mg", Form: "Tablet"},
	{Name: "Paracetamol", Dosage: "500 mg", Form: "Tablet"},
	{Name: "Omeprazole", Dosage: "20 mg", Form: "Capsule"},
	{Name: "Metformin", Dosage: "850 mg", Form: "Tablet"},
	{Name: "Amlodipine", Dosage: "5 mg", Form: "Tablet"},
	{Name: "Ciprofloxacin", Dosage: "500 mg", Form: "Tablet"},
	{Name: "Cetirizine", Dosage: "10 mg", Form: "Tablet"},
	{Name: "Salbutamol", Dosage: "100 mcg", Form: "Inhaler"},
	{Name: "Insulin Glargine", Dosage: "100 IU/mL", Form: "Injection"},
	{Name: "Hydrocortisone", Dosage: "1%", Form: "Cream"},
	{Name: "Azithromycin", Dosage: "250 mg", Form: "Tablet"},
}

var seedSuppliers = []models.Supplier{
	{Name: "Farabi Pharma Scientific Bureau", Email: "farabi@pharma.iq", Phone: "+964 780 123 4567", LocationName: "Al-Sa'adoon St, Baghdad", Lat: 33.3152, Lng: 44.3661},
	{Name: "Al-Raed Group", Email: "contact@raed-group.iq", Phone: "+964 770 987 6543", LocationName: "Al-Mansour, Baghdad", Lat: 33.3333, Lng: 44.3211},
	{Name: "Al-Thuraya Pharma Group", Email: "info@thuraya-pharma.iq", Phone: "+964 790 111 2222", LocationName: "Al-Karrada, Baghdad", Lat: 33.3012, Lng: 44.4231},
	{Name: "Areej Baghdad Wholesales", Email: "areej@baghdad.iq", Phone: "+964 781 222 3333", LocationName: "Al-Harithiya, Baghdad", Lat: 33.3188, Lng: 44.3544},
	{Name: "Xenofarma Iraq", Email: "office@xenofarma.iq", Phone: "+964 750 444 5555", LocationName: "Gulan Street, Erbil", Lat: 36.1901, Lng: 44.0091},
	{Name: "ESB Group", Email: "info@esb-group.iq", Phone: "+964 750 666 7777", LocationName: "100m Road, Erbil", Lat: 36.2122, Lng: 43.9877},
	{Name: "Organo Pharmaceuticals", Email: "dist@organo.iq", Phone: "+964 750 888 9999", LocationName: "Bakhtyari, Erbil", Lat: 36.1755, Lng: 44.0122},
	{Name: "Madar Al-Hayat", Email: "sales@madar-alhayat.iq", Phone: "+964 750 000 1111", LocationName: "Ankawa Rd, Erbil", Lat: 36.2344, Lng: 43.9988},
	{Name: "SaMed Pharma Basra", Email: "basra@samed.iq", Phone: "+964 780 333 4444", LocationName: "Al-Ashar, Basra", Lat: 30.5081, Lng: 47.7835},
	{Name: "Al Tawasul Logistics", Email: "ops@tawasul.iq", Phone: "+964 781 555 6666", LocationName: "Al-Zubair Industrial, Basra", Lat: 30.3988, Lng: 47.6544},
	{Name: "Kawkab Group Mosul", Email: "mosul@kawkab.iq", Phone: "+964 771 777 8888", LocationName: "Al-Zuhour District, Mosul", Lat: 36.3489, Lng: 43.1577},
	{Name: "Nineveh Med Supply", Email: "contact@nineveh-med.iq", Phone: "+964 770 222 9999", LocationName: "Al-Muthanna, Mosul", Lat: 36.3655, Lng: 43.1422},
	{Name: "Sulaymaniyah Health Bridge", Email: "info@sul-health.iq", Phone: "+964 770 123 0000", LocationName: "Salim St, Sulaymaniyah", Lat: 35.5558, Lng: 45.4329},
	{Name: "Najaf Al-Ashraf Medical", Email: "najaf@med-center.iq", Phone: "+964 782 444 0000", LocationName: "Medina St, Najaf", Lat: 31.9922, Lng: 44.3195},
	{Name: "Karbala Pharma Care", Email: "care@karbala-pharma.iq", Phone: "+964 781 666 1111", LocationName: "Al-Abbas St, Karbala", Lat: 32.6160, Lng: 44.0248},
	{Name: "Kirkuk Medical Depot", Email: "kirkuk@depot.iq", Phone: "+964 770 555 2222", LocationName: "Baghdad Rd, Kirkuk", Lat: 35.4687, Lng: 44.3924},
	{Name: "Duhok Pharma Distro", Email: "duhok@pharma-dist.iq", Phone: "+964 750 777 3333", LocationName: "KRO District, Duhok", Lat: 36.8665, Lng: 42.9888},
}

var seedPharmacies = []models.Pharmacy{
	{Name: "Elm Street Pharmacy", Email: "pharmacy1@demo.com", Password: "demo1", Phone: "+1 (555) 020-1001", Address: "112 Elm Street, New York, NY"},
	{Name: "Riverside Rx", Email: "pharmacy2@demo.com", Password: "demo2", Phone: "+1 (555) 020-2102", Address: "48 Riverside Drive, New York, NY"},
	{Name: "Sunrise Community Pharmacy", Email: "pharmacy3@demo.com", Password: "demo3", Phone: "+1 (555) 020-3333", Address: "9-17 28th Ave, Queens, NY"},
}

// SeedSupplierPassword is shared by every demo supplier.
const SeedSupplierPassword = "demo1"

// Seeder builds the demo AppState. Rand and Now are injectable for tests.
type Seeder struct {
	Rand *rand.Rand
	Now  func() time.Time
}

func NewSeeder(randomSeed int64) *Seeder {
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	return &Seeder{
		Rand: rand.New(rand.NewSource(randomSeed)),
		Now:  time.Now,
	}
}

// Generate returns a fresh seed document. Every record is validated as it is
// built; the first invalid one aborts generation.
func (s *Seeder) Generate() (*models.AppState, error) {
	now := s.Now().UTC()

	medicines := make([]models.Medicine, 0, len(seedMedicines))
	for _, m := range seedMedicines {
		m.ID = models.NewID(models.PrefixMedicine)
		if err := schema.Validate("seed.medicine", m); err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}

	suppliers := make([]models.Supplier, 0, len(seedSuppliers))
	for _, sup := range seedSuppliers {
		sup.ID = models.NewID(models.PrefixSupplier)
		sup.Password = SeedSupplierPassword
		if err := schema.Validate("seed.supplier", sup); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}

	pharmacies := make([]models.Pharmacy, 0, len(seedPharmacies))
	for _, p := range seedPharmacies {
		p.ID = models.NewID(models.PrefixPharmacy)
		if err := schema.Validate("seed.pharmacy", p); err != nil {
			return nil, err
		}
		pharmacies = append(pharmacies, p)
	}

	listings := make([]models.SupplierMedicine, 0, seedListings)
	for i := 0; i < seedListings; i++ {
		sm := models.SupplierMedicine{
			ID:         models.NewID(models.PrefixSupplierMedicine),
			SupplierID: suppliers[i%len(suppliers)].ID,
			MedicineID: medicines[s.Rand.Intn(len(medicines))].ID,
			Price:      decimal.NewFromFloat(6 + s.Rand.Float64()*38).Round(2),
			Stock:      10 + s.Rand.Intn(220),
			Available:  s.Rand.Float64() > seedUnavailableRatio,
		}
		if err := schema.Validate("seed.supplierMedicine", sm); err != nil {
			return nil, err
		}
		listings = append(listings, sm)
	}

	statuses := []models.OrderStatus{models.OrderStatusPending, models.OrderStatusApproved, models.OrderStatusRejected}
	orders := make([]models.Order, 0, seedOrders)
	for idx := 0; idx < seedOrders; idx++ {
		supplier := s.pickOrderSupplier(suppliers, listings)
		pharmacy := pharmacies[s.Rand.Intn(len(pharmacies))]

		pool := filterListings(listings, supplier.ID, true)
		if len(pool) == 0 {
			pool = filterListings(listings, supplier.ID, false)
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("seed order %d: supplier %s has no listings", idx, supplier.ID)
		}

		count := 1 + s.Rand.Intn(3)
		items := make([]models.OrderItem, 0, count)
		for j := 0; j < count; j++ {
			it := pool[s.Rand.Intn(len(pool))]
			qty := 8 + s.Rand.Intn(30)
			if limit := max(1, it.Stock); qty > limit {
				qty = limit
			}
			items = append(items, models.OrderItem{
				ID:                 models.NewID(models.PrefixOrderItem),
				SupplierMedicineID: it.ID,
				Quantity:           max(1, qty),
				UnitPrice:          it.Price,
			})
		}

		status := statuses[idx%len(statuses)]
		order := models.Order{
			ID:         models.NewID(models.PrefixOrder),
			SupplierID: supplier.ID,
			PharmacyID: pharmacy.ID,
			Status:     status,
			CreatedAt:  now.Add(-time.Duration(idx) * seedOrderSpacing),
			Items:      items,
		}
		if idx%2 == 0 {
			order.Note = SeedOrderNote
		}
		switch status {
		case models.OrderStatusApproved:
			order.DecisionNote = SeedApprovedNote
		case models.OrderStatusRejected:
			order.DecisionNote = SeedRejectedNote
		}
		if err := schema.Validate("seed.order", order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	welcome := models.Notification{
		ID:        models.NewID(models.PrefixNotification),
		CreatedAt: now,
		Title:     WelcomeTitle,
		Message:   WelcomeMessage,
	}
	if err := schema.Validate("seed.notification", welcome); err != nil {
		return nil, err
	}

	state := &models.AppState{
		Version:           models.StateVersion,
		Medicines:         medicines,
		Suppliers:         suppliers,
		Pharmacies:        pharmacies,
		SupplierMedicines: listings,
		Orders:            orders,
		Ratings:           []models.Rating{},
		Notifications:     []models.Notification{welcome},
	}
	if err := schema.Validate("seed.state", state); err != nil {
		return nil, err
	}
	return state, nil
}

// pickOrderSupplier picks a random supplier, preferring one with at least one
// available listing.
func (s *Seeder) pickOrderSupplier(suppliers []models.Supplier, listings []models.SupplierMedicine) models.Supplier {
	supplier := suppliers[s.Rand.Intn(len(suppliers))]
	if len(filterListings(listings, supplier.ID, true)) > 0 {
		return supplier
	}

	var stocked []models.Supplier
	for _, sup := range suppliers {
		if len(filterListings(listings, sup.ID, true)) > 0 {
			stocked = append(stocked, sup)
		}
	}
	if len(stocked) == 0 {
		return supplier
	}
	return stocked[s.Rand.Intn(len(stocked))]
}

func filterListings(listings []models.SupplierMedicine, supplierID string, onlyAvailable bool) []models.SupplierMedicine {
	var out []models.SupplierMedicine
	for _, sm := range listings {
		if sm.SupplierID != supplierID {
			continue
		}
		if onlyAvailable && !sm.Available {
			continue
		}
		out = append(out, sm)
	}
	return out
}
