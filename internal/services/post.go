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

// PostInput is the create/update command for a post, whatever encoding it
// arrived in.
type PostInput struct {
	Title   string
	Content string
	Image   *Upload
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrBadRequest)
	}
	return nil
}

type PostService struct {
	store *store.Store
	files FileStore
	log   logrus.FieldLogger
}

func NewPostService(st *store.Store, files FileStore, log logrus.FieldLogger) *PostService {
	return &PostService{store: st, files: files, log: log}
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, actorID uint, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.UserByID(ctx, actorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid user", ErrBadRequest)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  actorID,
	}
	if in.Image != nil {
		path, err := s.files.Save(in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = path
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		s.discardFile(post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": actorID}).Info("post created")
	return s.Get(ctx, post.ID)
}

// loadOwned fetches a post and checks that actorID owns it.
func (s *PostService) loadOwned(ctx context.Context, actorID, id uint) (*models.Post, error) {
	post, err := s.store.PostRecord(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}
	if post.UserID != actorID {
		return nil, fmt.Errorf("%w: not the owner of post %d", ErrForbidden, id)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actorID, id uint, in PostInput) (*models.Post, error) {
	post, err := s.loadOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	previousImage := post.Image
	post.Title = in.Title
	post.Content = in.Content
	if in.Image != nil {
		path, err := s.files.Save(in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = path
	}

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if post.Image != previousImage {
			s.discardFile(post.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	// 替换图片后清理旧文件
	if post.Image != previousImage {
		s.discardFile(previousImage)
	}

	return s.Get(ctx, post.ID)
}

// Delete removes the post and its comments, then its image file.
func (s *PostService) Delete(ctx context.Context, actorID, id uint) error {
	post, err := s.loadOwned(ctx, actorID, id)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.discardFile(post.Image)
	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": actorID}).Info("post deleted")
	return nil
}

func (s *PostService) discardFile(path string) {
	if path == "" {
		return
	}
	if err := s.files.Remove(path); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("failed to remove upload")
	}
}
