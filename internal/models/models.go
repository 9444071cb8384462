package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers in both the persisted document and the API.
	decimal.MarshalJSONWithoutQuotes = true
}

// StateVersion is the schema version written into every AppState document.
const StateVersion = 1

type Role string

const (
	RoleSupplier Role = "supplier"
	RolePharmacy Role = "pharmacy"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

type Medicine struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Dosage string `json:"dosage" validate:"required"`
	Form   string `json:"form" validate:"required"`
}

type Supplier struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password"`
	Phone        string  `json:"phone"`
	LocationName string  `json:"locationName"`
	Lat          float64 `json:"lat" validate:"min=-90,max=90"`
	Lng          float64 `json:"lng" validate:"min=-180,max=180"`
}

// SupplierProfile is a Supplier without its password.
type SupplierProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	LocationName string  `json:"locationName"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

func (s Supplier) Profile() SupplierProfile {
	return SupplierProfile{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		LocationName: s.LocationName,
		Lat:          s.Lat,
		Lng:          s.Lng,
	}
}

type Pharmacy struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// PharmacyProfile is a Pharmacy without its password.
type PharmacyProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (p Pharmacy) Profile() PharmacyProfile {
	return PharmacyProfile{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	}
}

// SupplierMedicine is one supplier's listing for a catalog medicine.
type SupplierMedicine struct {
	ID         string          `json:"id" validate:"required"`
	SupplierID string          `json:"supplierId" validate:"required"`
	MedicineID string          `json:"medicineId" validate:"required"`
	Price      decimal.Decimal `json:"price" validate:"min=0"`
	Stock      int             `json:"stock" validate:"min=0"`
	Available  bool            `json:"available"`
}

type SupplierMedicineWithRelations struct {
	SupplierMedicine
	Medicine Medicine        `json:"medicine"`
	Supplier SupplierProfile `json:"supplier"`
}

type Order struct {
	ID           string      `json:"id" validate:"required"`
	SupplierID   string      `json:"supplierId" validate:"required"`
	PharmacyID   string      `json:"pharmacyId" validate:"required"`
	Status       OrderStatus `json:"status" validate:"required,oneof=pending approved rejected"`
	CreatedAt    time.Time   `json:"createdAt" validate:"required"`
	Items        []OrderItem `json:"items" validate:"dive"`
	Note         string      `json:"note,omitempty"`
	DecisionNote string      `json:"decisionNote,omitempty"`
}

// OrderItem carries a copy of the listing price at the time the order was placed.
type OrderItem struct {
	ID                 string          `json:"id" validate:"required"`
	SupplierMedicineID string          `json:"supplierMedicineId" validate:"required"`
	Quantity           int             `json:"quantity" validate:"min=1"`
	UnitPrice          decimal.Decimal `json:"unitPrice" validate:"min=0"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type Rating struct {
	ID         string    `json:"id" validate:"required"`
	SupplierID string    `json:"supplierId" validate:"required"`
	PharmacyID string    `json:"pharmacyId" validate:"required"`
	Rating     int       `json:"rating" validate:"min=1,max=5"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt" validate:"required"`
}

// Notification without a User is a broadcast visible to every session.
type Notification struct {
	ID        string       `json:"id" validate:"required"`
	CreatedAt time.Time    `json:"createdAt" validate:"required"`
	Title     string       `json:"title" validate:"required"`
	Message   string       `json:"message"`
	Read      bool         `json:"read"`
	User      *CurrentUser `json:"user,omitempty"`
}

func (n Notification) VisibleTo(role Role, userID string) bool {
	return n.User == nil || (n.User.Role == role && n.User.UserID == userID)
}

// CurrentUser is the session document.
type CurrentUser struct {
	Role   Role   `json:"role" validate:"required,oneof=supplier pharmacy"`
	UserID string `json:"userId" validate:"required"`
}

type AppState struct {
	Version           int                `json:"version" validate:"eq=1"`
	Medicines         []Medicine         `json:"medicines" validate:"dive"`
	Suppliers         []Supplier         `json:"suppliers" validate:"dive"`
	Pharmacies        []Pharmacy         `json:"pharmacies" validate:"dive"`
	SupplierMedicines []SupplierMedicine `json:"supplierMedicines" validate:"dive"`
	Orders            []Order            `json:"orders" validate:"dive"`
	Ratings           []Rating           `json:"ratings" validate:"dive"`
	Notifications     []Notification     `json:"notifications" validate:"dive"`
}

type SupplierPerformance struct {
	Score            int     `json:"score"`
	FulfillmentRate  int     `json:"fulfillmentRate"`
	OnTimeRate       int     `json:"onTimeRate"`
	CancellationRate int     `json:"cancellationRate"`
	TotalRatings     int     `json:"totalRatings"`
	AverageRating    float64 `json:"averageRating"`
	Status           string  `json:"status"`
}
