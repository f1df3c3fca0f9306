package admin

import (
	"errors"
	"log"
	"net/http"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GET /api/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur récupération utilisateurs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

// PUT /api/admin/users/:id/role
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide (customer ou admin)"})
		return
	}
	if id.String() == c.GetString("user_id") && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de retirer votre propre rôle administrateur"})
		return
	}

	err = h.Users.UpdateRole(c.Request.Context(), id, req.Role)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour rôle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	log.Printf("✅ Rôle de %s → %s", id, req.Role)
	c.JSON(http.StatusOK, gin.H{"message": "Rôle mis à jour", "id": id, "role": req.Role})
}

// DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}
	if id.String() == c.GetString("user_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de supprimer votre propre compte"})
		return
	}

	err = h.Users.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur suppression utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé"})
}
