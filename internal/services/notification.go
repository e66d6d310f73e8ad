package services

import (
	"context"
	"fmt"

	"blogapi/internal/models"
	"blogapi/internal/store"
)

type NotificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// ListForUser returns the user's notifications, most recent first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	list, err := s.store.NotificationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// NotifyPostOwner records that actor commented on post. tx lets the caller
// write the notification in the same transaction as the comment.
func (s *NotificationService) NotifyPostOwner(ctx context.Context, tx *store.Store, post *models.Post, actor *models.User, comment *models.Comment) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    post.UserID,
		ActorID:   &actor.ID,
		PostID:    &post.ID,
		CommentID: &comment.ID,
		Type:      models.NotificationTypeCommentPost,
		Message:   fmt.Sprintf("%s commented on your post \"%s\"", actor.Username, post.Title),
	}
	if comment.ParentID != nil {
		n.Type = models.NotificationTypeReplyComment
		n.Message = fmt.Sprintf("%s replied to a comment on your post \"%s\"", actor.Username, post.Title)
	}

	if err := tx.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}
