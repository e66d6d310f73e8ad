package store

import (
	"context"

	"blogapi/internal/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate(s.conn(ctx).Create(n).Error)
}

// NotificationsByUser returns the recipient's notifications, newest first.
func (s *Store) NotificationsByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
