package store

import (
	"context"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// withPostRelations eagerly attaches the author and the comment thread.
func withPostRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User")
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := withPostRelations(s.conn(ctx)).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostByID loads a post together with its author and comments.
func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withPostRelations(s.conn(ctx)).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// PostRecord loads only the posts row, without relations.
func (s *Store) PostRecord(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.conn(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.conn(ctx).Create(post).Error)
}

// UpdatePost persists the mutable columns of an existing post.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	err := s.conn(ctx).Model(post).
		Select("title", "content", "image", "updated_at").
		Updates(post).Error
	return translate(err)
}

// DeletePost removes a post and every comment attached to it in one
// transaction. Reply references inside the thread are cleared first so the
// self-referencing foreign key never blocks the delete.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db := tx.conn(ctx)
		if err := db.Model(&models.Comment{}).
			Where("post_id = ? AND parent_id IS NOT NULL", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := db.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
