package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/models"
	"blogapi/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   *Upload
}

type LoginResult struct {
	Token    string
	UserID   uint
	Username string
}

type AuthService struct {
	store    *store.Store
	files    FileStore
	tokens   *TokenManager
	log      logrus.FieldLogger
	hashCost int
}

func NewAuthService(st *store.Store, files FileStore, tokens *TokenManager, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		store:    st,
		files:    files,
		tokens:   tokens,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account. The email pre-check only produces a
// friendlier error; the unique index decides races.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrBadRequest)
	}

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", ErrBadRequest)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}

	if in.Avatar != nil {
		path, err := s.files.Save(in.Avatar)
		if err != nil {
			return nil, err
		}
		user.Avatar = path
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.discardFile(user.Avatar)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	user, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}

// CurrentUser resolves the user behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid user", ErrBadRequest)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) discardFile(path string) {
	if path == "" {
		return
	}
	if err := s.files.Remove(path); err != nil {
		s.log.WithError(err).WithField("path", path).Warn("failed to remove upload")
	}
}
