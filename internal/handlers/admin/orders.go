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

// GET /api/admin/orders?status=
func (h *Handler) ListOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.ValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	orders, err := h.Orders.List(c.Request.Context(), status)
	if err != nil {
		log.Printf("❌ Erreur récupération commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// PUT /api/admin/orders/:id/status
// Passer une commande impayée à "paid" (virement reçu) applique les mêmes
// effets qu'un paiement carte.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide", "allowed": models.OrderStatuses})
		return
	}

	ctx := c.Request.Context()
	order, err := h.Orders.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	finalized := false
	if req.Status == models.OrderPaid && !models.CountsAsRevenue(order.Status) && h.Finalizer != nil {
		finalized, err = h.Finalizer.FinalizeOrder(ctx, order, nil)
		if err != nil {
			log.Printf("❌ Finalisation manuelle %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur finalisation commande"})
			return
		}
	}
	if !finalized {
		err = h.Orders.UpdateStatus(ctx, id, req.Status)
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour statut %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	log.Printf("📦 Commande %s: %s → %s", order.Reference(), order.Status, req.Status)
	c.JSON(http.StatusOK, gin.H{"id": id, "previous_status": order.Status, "status": req.Status})
}
