package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/safar/pharmsync/internal/store"
)

// OrderQuery filters orders. Role and UserID only apply when both are set.
type OrderQuery struct {
	Role   models.Role
	UserID string
	Status models.OrderStatus
}

func (q OrderQuery) matches(o models.Order) bool {
	if q.Role != "" && q.UserID != "" {
		switch q.Role {
		case models.RoleSupplier:
			if o.SupplierID != q.UserID {
				return false
			}
		case models.RolePharmacy:
			if o.PharmacyID != q.UserID {
				return false
			}
		}
	}
	return q.Status == "" || o.Status == q.Status
}

// CreateOrder places a pending order. Stock on every referenced listing is
// decremented in the same write and unit prices are copied from the listings.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if err := schema.Validate("orders.create", req); err != nil {
		return nil, err
	}

	var created models.Order
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		si, ok := findSupplier(tx.State, req.SupplierID)
		if !ok {
			return ErrSupplierNotFound
		}
		pi, ok := findPharmacy(tx.State, req.PharmacyID)
		if !ok {
			return ErrPharmacyNotFound
		}
		if len(req.Items) == 0 {
			return ErrEmptyOrder
		}
		supplier, pharmacy := tx.State.Suppliers[si], tx.State.Pharmacies[pi]

		reserved := make(map[int]int)
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			idx, ok := findListing(tx.State, it.SupplierMedicineID)
			if !ok {
				return ErrSupplierMedicineNotFound
			}
			sm := tx.State.SupplierMedicines[idx]
			if sm.SupplierID != req.SupplierID {
				return ErrItemWrongSupplier
			}
			if !sm.Available {
				return ErrItemUnavailable
			}
			qty := math.Floor(it.Quantity)
			if math.IsNaN(qty) || qty <= 0 {
				return ErrQuantityNotPositive
			}
			if qty > float64(sm.Stock-reserved[idx]) {
				return ErrQuantityExceedsStock
			}
			reserved[idx] += int(qty)

			items = append(items, models.OrderItem{
				ID:                 s.newID(models.PrefixOrderItem),
				SupplierMedicineID: sm.ID,
				Quantity:           int(qty),
				UnitPrice:          sm.Price,
			})
		}

		for idx, qty := range reserved {
			tx.State.SupplierMedicines[idx].Stock -= qty
		}

		created = models.Order{
			ID:         s.newID(models.PrefixOrder),
			SupplierID: req.SupplierID,
			PharmacyID: req.PharmacyID,
			Status:     models.OrderStatusPending,
			CreatedAt:  s.timestamp(),
			Items:      items,
			Note:       strings.TrimSpace(req.Note),
		}
		if err := schema.Validate("orders.create", created); err != nil {
			return err
		}
		tx.State.Orders = append([]models.Order{created}, tx.State.Orders...)

		s.pushNotification(tx.State, "Order created",
			fmt.Sprintf("New order from %s is pending review.", pharmacy.Name),
			&models.CurrentUser{Role: models.RoleSupplier, UserID: supplier.ID})
		s.pushNotification(tx.State, "Order submitted",
			fmt.Sprintf("Your order to %s is now pending.", supplier.Name),
			&models.CurrentUser{Role: models.RolePharmacy, UserID: pharmacy.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListOrders returns matching orders, newest first.
func (s *Service) ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	out := []models.Order{}
	err := s.store.View(ctx, func(state *models.AppState) error {
		for _, o := range state.Orders {
			if q.matches(o) {
				out = append(out, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	store.SortOrdersNewestFirst(out)
	return out, nil
}

// ListOrdersPage is ListOrders split into keyset pages.
func (s *Service) ListOrdersPage(ctx context.Context, q OrderQuery, cursor string, limit int) (*store.CursorPage, error) {
	orders, err := s.ListOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	return store.PageOrders(orders, cursor, limit)
}

// DecideOrder approves or rejects a pending order. Rejection does not return
// the reserved stock to the listing.
func (s *Service) DecideOrder(ctx context.Context, orderID string, req models.DecideOrderRequest) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)

	var decided models.Order
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		idx, ok := findOrder(tx.State, orderID)
		if !ok {
			return ErrOrderNotFound
		}
		current := tx.State.Orders[idx]
		if current.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}
		if req.Status != models.OrderStatusApproved && req.Status != models.OrderStatusRejected {
			return ErrInvalidDecision
		}

		next := current
		next.Status = req.Status
		next.DecisionNote = strings.TrimSpace(req.DecisionNote)
		if err := schema.Validate("orders.decide", next); err != nil {
			return err
		}
		tx.State.Orders[idx] = next
		decided = next

		s.notifyDecision(tx.State, next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

func (s *Service) notifyDecision(state *models.AppState, o models.Order) {
	verb := "rejected"
	title := "Order rejected"
	if o.Status == models.OrderStatusApproved {
		verb = "approved"
		title = "Order approved"
	}

	pharmacyName, supplierName := "Pharmacy", "supplier"
	var supplierUser, pharmacyUser *models.CurrentUser
	if i, ok := findSupplier(state, o.SupplierID); ok {
		supplierName = state.Suppliers[i].Name
		supplierUser = &models.CurrentUser{Role: models.RoleSupplier, UserID: o.SupplierID}
	}
	if i, ok := findPharmacy(state, o.PharmacyID); ok {
		pharmacyName = state.Pharmacies[i].Name
		pharmacyUser = &models.CurrentUser{Role: models.RolePharmacy, UserID: o.PharmacyID}
	}

	s.pushNotification(state, title,
		fmt.Sprintf("Order %s. %s will be notified.", verb, pharmacyName), supplierUser)
	s.pushNotification(state, title,
		fmt.Sprintf("Your order to %s was %s.", supplierName, verb), pharmacyUser)
}
