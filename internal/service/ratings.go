package service

import (
	"context"
	"math"
	"strings"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
	"github.com/safar/pharmsync/internal/store"
)

const defaultAverageRating = 4.5

// CreateRating records a pharmacy's rating of a supplier. Ratings are never
// deduplicated.
func (s *Service) CreateRating(ctx context.Context, req models.CreateRatingRequest) (*models.Rating, error) {
	if err := schema.Validate("ratings.create", req); err != nil {
		return nil, err
	}

	var created models.Rating
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if _, ok := findSupplier(tx.State, req.SupplierID); !ok {
			return ErrSupplierNotFound
		}
		if _, ok := findPharmacy(tx.State, req.PharmacyID); !ok {
			return ErrPharmacyNotFound
		}

		created = models.Rating{
			ID:         s.newID(models.PrefixRating),
			SupplierID: req.SupplierID,
			PharmacyID: req.PharmacyID,
			Rating:     req.Rating,
			Comment:    strings.TrimSpace(req.Comment),
			CreatedAt:  s.timestamp(),
		}
		tx.State.Ratings = append([]models.Rating{created}, tx.State.Ratings...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SupplierPerformance scores a supplier from its orders and ratings.
// OnTimeRate is simulated from the cancellation rate; no delivery data exists.
func (s *Service) SupplierPerformance(ctx context.Context, supplierID string) (*models.SupplierPerformance, error) {
	supplierID = strings.TrimSpace(supplierID)

	var perf *models.SupplierPerformance
	err := s.store.View(ctx, func(state *models.AppState) error {
		if _, ok := findSupplier(state, supplierID); !ok {
			return ErrSupplierNotFound
		}
		perf = computePerformance(state, supplierID)
		return nil
	})
	return perf, err
}

func computePerformance(state *models.AppState, supplierID string) *models.SupplierPerformance {
	var total, approved, rejected int
	for _, o := range state.Orders {
		if o.SupplierID != supplierID {
			continue
		}
		total++
		switch o.Status {
		case models.OrderStatusApproved:
			approved++
		case models.OrderStatusRejected:
			rejected++
		}
	}

	var ratings, sum int
	for _, r := range state.Ratings {
		if r.SupplierID == supplierID {
			ratings++
			sum += r.Rating
		}
	}

	fulfillment, cancellation, onTime := 100.0, 0.0, 100.0
	if total > 0 {
		fulfillment = float64(approved) / float64(total) * 100
		cancellation = float64(rejected) / float64(total) * 100
		onTime = math.Max(85, 100-cancellation/2)
	}

	avg := defaultAverageRating
	if ratings > 0 {
		avg = float64(sum) / float64(ratings)
	}

	score := int(math.Round(fulfillment*0.4 + onTime*0.3 + (avg/5*100)*0.3))

	return &models.SupplierPerformance{
		Score:            score,
		FulfillmentRate:  int(math.Round(fulfillment)),
		OnTimeRate:       int(math.Round(onTime)),
		CancellationRate: int(math.Round(cancellation)),
		TotalRatings:     ratings,
		AverageRating:    math.Round(avg*10) / 10,
		Status:           performanceStatus(score),
	}
}

func performanceStatus(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score < 50:
		return "Poor"
	}
	return "Average"
}
