package models

import "github.com/google/uuid"

// ID prefixes, one per entity collection.
const (
	PrefixMedicine         = "med"
	PrefixSupplier         = "sup"
	PrefixPharmacy         = "pha"
	PrefixSupplierMedicine = "sm"
	PrefixOrder            = "ord"
	PrefixOrderItem        = "oi"
	PrefixRating           = "rat"
	PrefixNotification     = "ntf"
)

func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
