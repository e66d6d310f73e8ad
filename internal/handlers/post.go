package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Title   string `form:"title" json:"title" binding:"required,max=200"`
	Content string `form:"content" json:"content" binding:"required"`
}

// bindPostInput builds the post command from a JSON or multipart body.
func bindPostInput(c *gin.Context) (services.PostInput, func(), bool) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return services.PostInput{}, nil, false
	}

	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		RespondError(c, err)
		return services.PostInput{}, nil, false
	}

	return services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   image,
	}, closeImage, true
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	in, closeImage, ok := bindPostInput(c)
	if !ok {
		return
	}
	defer closeImage()

	post, err := h.posts.Create(c.Request.Context(), userID, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	in, closeImage, ok := bindPostInput(c)
	if !ok {
		return
	}
	defer closeImage()

	post, err := h.posts.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), userID, id); err != nil {
		RespondError(c, err)
		return
	}
	message(c, "post deleted")
}
