package service

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindRule
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRule:
		return "rule"
	case KindAuth:
		return "auth"
	}
	return "unknown"
}

// Error is a domain failure with a message fit for end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func rule(msg string) *Error     { return &Error{Kind: KindRule, Message: msg} }
func auth(msg string) *Error     { return &Error{Kind: KindAuth, Message: msg} }

var (
	ErrSupplierNotFound         = notFound("Supplier not found")
	ErrPharmacyNotFound         = notFound("Pharmacy not found")
	ErrMedicineNotFound         = notFound("Medicine not found")
	ErrSupplierMedicineNotFound = notFound("Supplier medicine not found")
	ErrOrderNotFound            = notFound("Order not found")

	ErrInvalidSupplierCredentials = auth("Invalid supplier credentials")
	ErrInvalidPharmacyCredentials = auth("Invalid pharmacy credentials")

	ErrEmailAlreadyRegistered = rule("Email already registered")
	ErrEmptyOrder             = rule("Order must include at least one item")
	ErrItemWrongSupplier      = rule("Item does not belong to supplier")
	ErrItemUnavailable        = rule("Item is not available")
	ErrQuantityNotPositive    = rule("Quantity must be positive")
	ErrQuantityExceedsStock   = rule("Quantity exceeds stock")
	ErrOrderNotPending        = rule("Only pending orders can be decided")
	ErrInvalidDecision        = rule("Invalid decision")
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
