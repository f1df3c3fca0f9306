package user

import (
	"errors"
	"log"
	"net/http"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Orders.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := h.Orders.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.UserID != c.GetString("user_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}
	c.JSON(http.StatusOK, order)
}
