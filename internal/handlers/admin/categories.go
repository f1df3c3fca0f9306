package admin

import (
	"log"
	"net/http"

	"cosmetics_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// POST /api/admin/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom de catégorie requis"})
		return
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := h.Categories.Create(c.Request.Context(), &category); err != nil {
		log.Printf("❌ Erreur création catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie"})
		return
	}
	c.JSON(http.StatusCreated, category)
}
