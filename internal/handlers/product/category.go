package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Categories.List(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture catégories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération catégories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}
