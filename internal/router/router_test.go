package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/db/dbtest"
	"blogapi/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine    *gin.Engine
	uploadDir string
}

func newTestServer(t *testing.T, strict bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	cfg := &config.Config{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		JWTIssuer:      "blogapi-test",
		TokenTTL:       time.Hour,
		UploadDir:      t.TempDir(),
		UploadMaxBytes: 1 << 20,
		StrictAuth:     strict,
	}
	engine, err := New(Deps{
		Config:  cfg,
		DB:      dbtest.Open(t),
		Log:     logger,
		Metrics: middleware.NewMetrics(),
	})
	require.NoError(t, err)
	return &testServer{engine: engine, uploadDir: cfg.UploadDir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) multipart(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// login registers username and returns its token and id.
func (s *testServer) login(t *testing.T, username string) (string, uint) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-" + username,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "secret-" + username,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token    string `json:"token"`
		UserID   uint   `json:"userId"`
		Username string `json:"username"`
	}
	decode(t, w, &res)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, username, res.Username)

	w = s.do(t, http.MethodGet, "/auth/me", res.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "@example.com")
	return res.Token, res.UserID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

type postBody struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl"`
	UserID      uint   `json:"userId"`
	ContentHTML string `json:"contentHtml"`
	User        struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Comments []commentBody `json:"comments"`
}

type commentBody struct {
	ID              uint   `json:"id"`
	Content         string `json:"content"`
	BlogPostID      uint   `json:"blogPostId"`
	UserID          uint   `json:"userId"`
	ParentCommentID *uint  `json:"parentCommentId"`
}

type notificationBody struct {
	UserID  uint   `json:"userId"`
	Type    string `json:"type"`
	Message string `json:"message"`
	IsRead  bool   `json:"isRead"`
}

func TestBlogFlow(t *testing.T) {
	s := newTestServer(t, false)
	aliceToken, aliceID := s.login(t, "alice")
	bobToken, bobID := s.login(t, "bob")

	// alice publishes a post with an image
	w := s.multipart(t, http.MethodPost, "/posts", aliceToken,
		map[string]string{"title": "Hello", "content": "**world**"}, "image", "cover.png", pngFile(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post postBody
	decode(t, w, &post)
	assert.Equal(t, aliceID, post.UserID)
	assert.Equal(t, "alice", post.User.Username)
	assert.Empty(t, post.User.Email)
	assert.Contains(t, post.ContentHTML, "<strong>world</strong>")
	require.True(t, strings.HasPrefix(post.ImageURL, "/uploads/"))
	assert.FileExists(t, filepath.Join(s.uploadDir, strings.TrimPrefix(post.ImageURL, "/uploads/")))

	// the image is served statically
	w = s.do(t, http.MethodGet, post.ImageURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// bob comments, then replies to his own comment
	w = s.do(t, http.MethodPost, "/comments", "", map[string]any{
		"content": "Nice post", "blogPostId": post.ID, "userId": bobID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var comment commentBody
	decode(t, w, &comment)
	assert.Equal(t, post.ID, comment.BlogPostID)
	assert.Nil(t, comment.ParentCommentID)

	w = s.do(t, http.MethodPost, "/comments", "", map[string]any{
		"content": "Agreed", "blogPostId": post.ID, "userId": bobID, "parentCommentId": comment.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reply commentBody
	decode(t, w, &reply)
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, comment.ID, *reply.ParentCommentID)

	// alice got one notification per comment, newest first
	w = s.do(t, http.MethodGet, fmt.Sprintf("/notifications/user/%d", aliceID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []notificationBody
	decode(t, w, &notes)
	require.Len(t, notes, 2)
	assert.Equal(t, "reply_comment", notes[0].Type)
	assert.Equal(t, "comment_post", notes[1].Type)
	assert.Equal(t, `bob commented on your post "Hello"`, notes[1].Message)
	assert.False(t, notes[1].IsRead)

	// comments are listed oldest first, and embedded in the post
	w = s.do(t, http.MethodGet, fmt.Sprintf("/comments/post/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []commentBody
	decode(t, w, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, comment.ID, comments[0].ID)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail postBody
	decode(t, w, &detail)
	assert.Len(t, detail.Comments, 2)

	// bob may not touch alice's post
	w = s.do(t, http.MethodPut, fmt.Sprintf("/posts/%d", post.ID), bobToken, map[string]string{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// alice may not delete bob's comment, bob may
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/comments/%d", reply.ID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/comments/%d", reply.ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// alice edits, then deletes the post along with its comments and image
	w = s.do(t, http.MethodPut, fmt.Sprintf("/posts/%d", post.ID), aliceToken, map[string]string{"title": "Hello again", "content": "edited"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated postBody
	decode(t, w, &updated)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, post.ImageURL, updated.ImageURL)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/comments/post/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	_, err := os.Stat(filepath.Join(s.uploadDir, strings.TrimPrefix(post.ImageURL, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t, false)

	w := s.multipart(t, http.MethodPost, "/auth/register", "",
		map[string]string{"username": "carol", "email": "Carol@Example.com", "password": "pw"}, "avatar", "me.png", pngFile(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "message")

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{"duplicate email", "/auth/register", map[string]string{"username": "c2", "email": "carol@example.com", "password": "pw"}, http.StatusBadRequest},
		{"missing password", "/auth/register", map[string]string{"username": "c3", "email": "c3@example.com"}, http.StatusBadRequest},
		{"invalid email", "/auth/register", map[string]string{"username": "c4", "email": "nope", "password": "pw"}, http.StatusBadRequest},
		{"login ok", "/auth/login", map[string]string{"email": "carol@example.com", "password": "pw"}, http.StatusOK},
		{"wrong password", "/auth/login", map[string]string{"email": "carol@example.com", "password": "bad"}, http.StatusUnauthorized},
		{"unknown email", "/auth/login", map[string]string{"email": "who@example.com", "password": "pw"}, http.StatusUnauthorized},
		{"empty login", "/auth/login", map[string]string{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t, false)
	token, _ := s.login(t, "dave")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/posts", "", map[string]string{"title": "t", "content": "c"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPut, "/posts/1", "", map[string]string{"title": "t", "content": "c"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/posts/1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, "/comments/1", "", nil).Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/posts/999", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/posts/999", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/comments/999", "", map[string]string{"content": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/posts/abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/posts", token, map[string]string{"title": "only title"}).Code)

	// comments against missing posts or users are rejected
	w := s.do(t, http.MethodPost, "/comments", "", map[string]any{"content": "x", "blogPostId": 999, "userId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// non-image uploads are rejected
	w = s.multipart(t, http.MethodPost, "/posts", token,
		map[string]string{"title": "t", "content": "c"}, "image", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestStrictAuth(t *testing.T) {
	s := newTestServer(t, true)
	aliceToken, aliceID := s.login(t, "alice")
	bobToken, bobID := s.login(t, "bob")

	w := s.do(t, http.MethodPost, "/posts", aliceToken, map[string]string{"title": "t", "content": "c"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post postBody
	decode(t, w, &post)

	// anonymous comment and impersonation are refused
	w = s.do(t, http.MethodPost, "/comments", "", map[string]any{"content": "x", "blogPostId": post.ID, "userId": bobID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/comments", bobToken, map[string]any{"content": "x", "blogPostId": post.ID, "userId": aliceID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// userId defaults to the token subject
	w = s.do(t, http.MethodPost, "/comments", bobToken, map[string]any{"content": "mine", "blogPostId": post.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var comment commentBody
	decode(t, w, &comment)
	assert.Equal(t, bobID, comment.UserID)

	path := fmt.Sprintf("/comments/%d", comment.ID)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPut, path, "", map[string]string{"content": "y"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, path, aliceToken, map[string]string{"content": "y"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, path, bobToken, map[string]string{"content": "y"}).Code)

	notes := fmt.Sprintf("/notifications/user/%d", aliceID)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, notes, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, notes, bobToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, notes, aliceToken, nil).Code)
}
