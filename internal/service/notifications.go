package service

import (
	"context"
	"sort"
	"strings"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/store"
)

// NotificationQuery scopes notifications to one user. Empty means all.
type NotificationQuery struct {
	Role   models.Role
	UserID string
}

func (q NotificationQuery) scoped() bool { return q.Role != "" && q.UserID != "" }

// ListNotifications returns broadcasts plus the user's own notifications,
// newest first.
func (s *Service) ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.store.View(ctx, func(state *models.AppState) error {
		for _, n := range state.Notifications {
			if q.scoped() && !n.VisibleTo(q.Role, q.UserID) {
				continue
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MarkRead flags one notification as read. Unknown ids are ignored.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	return s.store.Update(ctx, func(tx *store.Tx) error {
		for i := range tx.State.Notifications {
			if tx.State.Notifications[i].ID == id {
				tx.State.Notifications[i].Read = true
				break
			}
		}
		return nil
	})
}

// MarkAllRead flags every broadcast and every notification owned by the user.
func (s *Service) MarkAllRead(ctx context.Context, q NotificationQuery) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		for i := range tx.State.Notifications {
			if tx.State.Notifications[i].VisibleTo(q.Role, q.UserID) {
				tx.State.Notifications[i].Read = true
			}
		}
		return nil
	})
}
