package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/safar/pharmsync/internal/store"
)

const (
	defaultSupplierLocation = "New Supplier Location"
	defaultSupplierLat      = 40.7128
	defaultSupplierLng      = -74.006
	defaultPharmacyAddress  = "New Pharmacy Address"
)

// Login signs in a supplier or pharmacy by case-insensitive email and exact password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.CurrentUser, error) {
	if err := schema.Validate("login", req); err != nil {
		return nil, err
	}

	var me *models.CurrentUser
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var name string
		switch req.Role {
		case models.RoleSupplier:
			sup := findSupplierByEmail(tx.State, req.Email)
			if sup == nil || sup.Password != req.Password {
				return ErrInvalidSupplierCredentials
			}
			me, name = &models.CurrentUser{Role: models.RoleSupplier, UserID: sup.ID}, sup.Name
		case models.RolePharmacy:
			p := findPharmacyByEmail(tx.State, req.Email)
			if p == nil || p.Password != req.Password {
				return ErrInvalidPharmacyCredentials
			}
			me, name = &models.CurrentUser{Role: models.RolePharmacy, UserID: p.ID}, p.Name
		}

		tx.SetSession(me)
		s.pushNotification(tx.State, "Signed in", fmt.Sprintf("Welcome back, %s.", name), me)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return me, nil
}

// Register creates a supplier or pharmacy account and signs it in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.CurrentUser, error) {
	if err := schema.Validate("register", req); err != nil {
		return nil, err
	}

	var me *models.CurrentUser
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if emailTaken(tx.State, req.Email) {
			return ErrEmailAlreadyRegistered
		}

		switch req.Role {
		case models.RoleSupplier:
			sup := models.Supplier{
				ID:           s.newID(models.PrefixSupplier),
				Name:         req.Name,
				Email:        req.Email,
				Password:     req.Password,
				Phone:        req.Phone,
				LocationName: defaultSupplierLocation,
				Lat:          defaultSupplierLat,
				Lng:          defaultSupplierLng,
			}
			if req.LocationName != "" {
				sup.LocationName = req.LocationName
			}
			if req.Lat != nil {
				sup.Lat = *req.Lat
			}
			if req.Lng != nil {
				sup.Lng = *req.Lng
			}
			if err := schema.Validate("suppliers.create", sup); err != nil {
				return err
			}
			tx.State.Suppliers = append([]models.Supplier{sup}, tx.State.Suppliers...)
			me = &models.CurrentUser{Role: models.RoleSupplier, UserID: sup.ID}
			s.pushNotification(tx.State, "Account created",
				fmt.Sprintf("You're in! Start listing medicines for %s.", sup.Name), me)

		case models.RolePharmacy:
			p := models.Pharmacy{
				ID:       s.newID(models.PrefixPharmacy),
				Name:     req.Name,
				Email:    req.Email,
				Password: req.Password,
				Phone:    req.Phone,
				Address:  defaultPharmacyAddress,
			}
			if req.Address != "" {
				p.Address = req.Address
			}
			if err := schema.Validate("pharmacies.create", p); err != nil {
				return err
			}
			tx.State.Pharmacies = append([]models.Pharmacy{p}, tx.State.Pharmacies...)
			me = &models.CurrentUser{Role: models.RolePharmacy, UserID: p.ID}
			s.pushNotification(tx.State, "Account created",
				fmt.Sprintf("Welcome to PharmSync, %s. Browse suppliers and place your first order.", p.Name), me)
		}

		tx.SetSession(me)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return me, nil
}

// Logout clears the session only.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.WriteSession(ctx, nil)
}

// Me returns the active session, or nil when signed out.
func (s *Service) Me(ctx context.Context) (*models.CurrentUser, error) {
	if err := s.store.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.store.ReadSession(ctx)
}

func (s *Service) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	var out []models.Medicine
	err := s.store.View(ctx, func(state *models.AppState) error {
		out = state.Medicines
		return nil
	})
	return out, err
}

// ListSuppliers matches search against name, location and email.
func (s *Service) ListSuppliers(ctx context.Context, search string) ([]models.SupplierProfile, error) {
	search = strings.ToLower(strings.TrimSpace(search))

	out := []models.SupplierProfile{}
	err := s.store.View(ctx, func(state *models.AppState) error {
		for _, sup := range state.Suppliers {
			if search != "" {
				haystack := strings.ToLower(sup.Name + " " + sup.LocationName + " " + sup.Email)
				if !strings.Contains(haystack, search) {
					continue
				}
			}
			out = append(out, sup.Profile())
		}
		return nil
	})
	return out, err
}

func (s *Service) ListPharmacies(ctx context.Context) ([]models.PharmacyProfile, error) {
	out := []models.PharmacyProfile{}
	err := s.store.View(ctx, func(state *models.AppState) error {
		for _, p := range state.Pharmacies {
			out = append(out, p.Profile())
		}
		return nil
	})
	return out, err
}

func findSupplierByEmail(state *models.AppState, email string) *models.Supplier {
	for i := range state.Suppliers {
		if strings.EqualFold(state.Suppliers[i].Email, email) {
			return &state.Suppliers[i]
		}
	}
	return nil
}

func findPharmacyByEmail(state *models.AppState, email string) *models.Pharmacy {
	for i := range state.Pharmacies {
		if strings.EqualFold(state.Pharmacies[i].Email, email) {
			return &state.Pharmacies[i]
		}
	}
	return nil
}

// emailTaken checks both collections; emails are unique across roles.
func emailTaken(state *models.AppState, email string) bool {
	return findSupplierByEmail(state, email) != nil || findPharmacyByEmail(state, email) != nil
}
