package handlers

import (
	"fmt"
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

// CommentHandler serves /comments. With strict set, create and update act
// as the authenticated user instead of trusting the request body.
type CommentHandler struct {
	comments *services.CommentService
	strict   bool
}

func NewCommentHandler(comments *services.CommentService, strict bool) *CommentHandler {
	return &CommentHandler{comments: comments, strict: strict}
}

type createCommentRequest struct {
	Content         string `form:"content" json:"content" binding:"required"`
	BlogPostID      uint   `form:"blogPostId" json:"blogPostId" binding:"required"`
	UserID          uint   `form:"userId" json:"userId"`
	ParentCommentID *uint  `form:"parentCommentId" json:"parentCommentId"`
}

type updateCommentRequest struct {
	Content string `form:"content" json:"content" binding:"required"`
}

func (h *CommentHandler) ListForPost(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}

	comments, err := h.comments.ListForPost(c.Request.Context(), postID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := services.CommentInput{
		Content:  req.Content,
		PostID:   req.BlogPostID,
		UserID:   req.UserID,
		ParentID: req.ParentCommentID,
	}
	if h.strict {
		actor, _ := middleware.CurrentUserID(c)
		if req.UserID != 0 && req.UserID != actor {
			RespondError(c, fmt.Errorf("%w: cannot comment as another user", services.ErrForbidden))
			return
		}
		in.UserID = actor
	}

	comment, err := h.comments.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var actor *uint
	if h.strict {
		if uid, ok := middleware.CurrentUserID(c); ok {
			actor = &uid
		}
	}

	comment, err := h.comments.Update(c.Request.Context(), actor, id, req.Content)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), userID, id); err != nil {
		RespondError(c, err)
		return
	}
	message(c, "comment deleted")
}
