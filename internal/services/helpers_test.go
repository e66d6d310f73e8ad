package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"blogapi/internal/db/dbtest"
	"blogapi/internal/models"
	"blogapi/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store         *store.Store
	files         *LocalImageStore
	tokens        *TokenManager
	auth          *AuthService
	posts         *PostService
	comments      *CommentService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	st := store.New(dbtest.Open(t))
	files, err := NewLocalImageStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	tokens := NewTokenManager(testSecret, "blogapi-test", time.Hour)

	auth := NewAuthService(st, files, tokens, logger)
	auth.hashCost = bcrypt.MinCost
	notifications := NewNotificationService(st)

	return &testEnv{
		store:         st,
		files:         files,
		tokens:        tokens,
		auth:          auth,
		posts:         NewPostService(st, files, logger),
		comments:      NewCommentService(st, notifications, logger),
		notifications: notifications,
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw-" + username,
	})
	require.NoError(t, err)
	return u
}

// pngBytes returns a tiny valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t *testing.T, name string) *Upload {
	return &Upload{Filename: name, Content: bytes.NewReader(pngBytes(t))}
}

func textUpload(name, body string) *Upload {
	return &Upload{Filename: name, Content: strings.NewReader(body)}
}
