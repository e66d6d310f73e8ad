package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/models"
	"blogapi/internal/store"

	"github.com/sirupsen/logrus"
)

type CommentInput struct {
	Content  string
	PostID   uint
	UserID   uint
	ParentID *uint
}

type CommentService struct {
	store         *store.Store
	notifications *NotificationService
	log           logrus.FieldLogger
}

func NewCommentService(st *store.Store, notifications *NotificationService, log logrus.FieldLogger) *CommentService {
	return &CommentService{store: st, notifications: notifications, log: log}
}

func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.store.CommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create stores the comment and notifies the post owner. Both rows are
// written in one transaction; any missing reference leaves nothing behind.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		author, err := tx.UserByID(ctx, in.UserID)
		if err != nil {
			return missingRef(err, "invalid user or post")
		}
		post, err := tx.PostRecord(ctx, in.PostID)
		if err != nil {
			return missingRef(err, "invalid user or post")
		}
		if in.ParentID != nil {
			parent, err := tx.CommentByID(ctx, *in.ParentID)
			if err != nil {
				return missingRef(err, "invalid parent comment")
			}
			if parent.PostID != post.ID {
				return fmt.Errorf("%w: parent comment belongs to another post", ErrBadRequest)
			}
		}

		comment = &models.Comment{
			Content:  in.Content,
			PostID:   post.ID,
			UserID:   author.ID,
			ParentID: in.ParentID,
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		// 通知文章作者
		if _, err := tx.UserByID(ctx, post.UserID); err != nil {
			return missingRef(err, "post owner no longer exists")
		}
		_, err = s.notifications.NotifyPostOwner(ctx, tx, post, author, comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": comment.PostID, "user_id": comment.UserID}).Info("comment created")
	return s.store.CommentByID(ctx, comment.ID)
}

// Update replaces the content of a comment. A nil actorID skips the
// ownership check, matching the unauthenticated compatibility route.
func (s *CommentService) Update(ctx context.Context, actorID *uint, id uint, content string) (*models.Comment, error) {
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != nil && comment.UserID != *actorID {
		return nil, fmt.Errorf("%w: not the owner of comment %d", ErrForbidden, id)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}

	comment.Content = content
	if err := s.store.UpdateCommentContent(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actorID, id uint) error {
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	// 只允许删除自己的评论
	if comment.UserID != actorID {
		return fmt.Errorf("%w: not the owner of comment %d", ErrForbidden, id)
	}

	if err := s.store.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: comment %d", ErrNotFound, id)
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) load(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.store.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: comment %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load comment: %w", err)
	}
	return comment, nil
}

// missingRef turns a not-found lookup into ErrBadRequest.
func missingRef(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	return err
}
