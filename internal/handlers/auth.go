package handlers

import (
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// registerRequest binds from multipart/form or JSON.
type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=100"`
	Email    string `form:"email" json:"email" binding:"required,email,max=255"`
	Password string `form:"password" json:"password" binding:"required,max=72"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	avatar, closeAvatar, err := formUpload(c, "avatar", "profileImage")
	if err != nil {
		RespondError(c, err)
		return
	}
	defer closeAvatar()

	_, err = h.auth.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	message(c, "user registered successfully")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "login successful",
		"token":    res.Token,
		"userId":   res.UserID,
		"username": res.Username,
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
