package store

import (
	"context"

	"blogapi/internal/models"
)

func (s *Store) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.conn(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Store) CommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.conn(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.conn(ctx).Create(comment).Error)
}

func (s *Store) UpdateCommentContent(ctx context.Context, comment *models.Comment) error {
	err := s.conn(ctx).Model(comment).
		Select("content", "updated_at").
		Updates(comment).Error
	return translate(err)
}

// DeleteComment detaches direct replies and removes the comment.
func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db := tx.conn(ctx)
		if err := db.Model(&models.Comment{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		res := db.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
