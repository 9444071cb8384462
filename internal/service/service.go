// Package service implements the PharmSync domain operations on top of the
// document store. Each mutating operation is a single store.Update, so its
// notifications are persisted together with the change that caused them.
package service

import (
	"context"
	"time"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/store"
)

// MaxNotifications caps the notifications collection; older entries are dropped.
const MaxNotifications = 200

type Service struct {
	store *store.Store
	now   func() time.Time
	newID func(prefix string) string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		newID: models.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// pushNotification prepends a notification and trims the collection.
func (s *Service) pushNotification(state *models.AppState, title, message string, user *models.CurrentUser) models.Notification {
	n := models.Notification{
		ID:        s.newID(models.PrefixNotification),
		CreatedAt: s.timestamp(),
		Title:     title,
		Message:   message,
		User:      user,
	}
	state.Notifications = append([]models.Notification{n}, state.Notifications...)
	if len(state.Notifications) > MaxNotifications {
		state.Notifications = state.Notifications[:MaxNotifications]
	}
	return n
}

func findSupplier(state *models.AppState, id string) (int, bool) {
	for i := range state.Suppliers {
		if state.Suppliers[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func findPharmacy(state *models.AppState, id string) (int, bool) {
	for i := range state.Pharmacies {
		if state.Pharmacies[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func findMedicine(state *models.AppState, id string) (int, bool) {
	for i := range state.Medicines {
		if state.Medicines[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func findListing(state *models.AppState, id string) (int, bool) {
	for i := range state.SupplierMedicines {
		if state.SupplierMedicines[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func findOrder(state *models.AppState, id string) (int, bool) {
	for i := range state.Orders {
		if state.Orders[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// State returns the full validated document.
func (s *Service) State(ctx context.Context) (*models.AppState, error) {
	return s.store.ReadState(ctx)
}

// Reset regenerates the demo data and signs everyone out.
func (s *Service) Reset(ctx context.Context) (*models.AppState, error) {
	return s.store.Reset(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Backend().Ping(ctx)
}
