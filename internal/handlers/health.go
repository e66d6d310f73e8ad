package handlers

import (
	"net/http"

	"blogapi/internal/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

// Check handles GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	if err := db.Ping(c.Request.Context(), h.db); err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
