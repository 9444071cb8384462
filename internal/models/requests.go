package models

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Role     Role   `json:"role" validate:"required,oneof=supplier pharmacy"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// RegisterRequest fields beyond the shared ones apply to one role only.
// Absent supplier coordinates and locations fall back to defaults.
type RegisterRequest struct {
	Role         Role     `json:"role" validate:"required,oneof=supplier pharmacy"`
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password"`
	Phone        string   `json:"phone"`
	LocationName string   `json:"locationName,omitempty"`
	Lat          *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lng          *float64 `json:"lng,omitempty" validate:"omitempty,min=-180,max=180"`
	Address      string   `json:"address,omitempty"`
}

// Stock is accepted as any number and floored.
type CreateSupplierMedicineRequest struct {
	SupplierID string          `json:"supplierId" validate:"required"`
	MedicineID string          `json:"medicineId" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Stock      float64         `json:"stock"`
	Available  bool            `json:"available"`
}

type UpdateSupplierMedicineRequest struct {
	Price     *decimal.Decimal `json:"price,omitempty"`
	Stock     *float64         `json:"stock,omitempty"`
	Available *bool            `json:"available,omitempty"`
}

type CreateOrderItemRequest struct {
	SupplierMedicineID string  `json:"supplierMedicineId" validate:"required"`
	Quantity           float64 `json:"quantity"`
}

type CreateOrderRequest struct {
	SupplierID string                   `json:"supplierId" validate:"required"`
	PharmacyID string                   `json:"pharmacyId" validate:"required"`
	Items      []CreateOrderItemRequest `json:"items" validate:"dive"`
	Note       string                   `json:"note,omitempty"`
}

type DecideOrderRequest struct {
	Status       OrderStatus `json:"status"`
	DecisionNote string      `json:"decisionNote,omitempty"`
}

type CreateRatingRequest struct {
	SupplierID string `json:"supplierId" validate:"required"`
	PharmacyID string `json:"pharmacyId" validate:"required"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Comment    string `json:"comment,omitempty"`
}
