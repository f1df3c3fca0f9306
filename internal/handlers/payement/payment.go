package pa

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// statuts depuis lesquels une commande peut être marquée payée
var payableStatuses = []string{models.OrderPending, models.OrderAwaitingTransfer, models.OrderPaymentFailed}

// GET /api/checkout/confirm?payment_intent=<id>
func (h *Handler) ConfirmPayment(c *gin.Context) {
	intentID := c.Query("payment_intent")
	if intentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_intent requis"})
		return
	}
	ctx := c.Request.Context()

	intent, err := h.Payments.GetIntent(ctx, intentID)
	if err != nil {
		log.Printf("❌ Erreur lecture PaymentIntent %s: %v", intentID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Paiement introuvable"})
		return
	}

	order, err := h.orderForIntent(ctx, intent)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.UserID != c.GetString("user_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	status := order.Status
	if intent.Status == services.IntentSucceeded {
		if _, err := h.FinalizeOrder(ctx, order, intent); err != nil {
			log.Printf("❌ Finalisation commande %s: %v", order.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur finalisation commande"})
			return
		}
		status = models.OrderPaid
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":       order.ID,
		"status":         status,
		"payment_status": intent.Status,
	})
}

// POST /api/webhooks/stripe
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	event, err := h.Payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Println("❌ Webhook Stripe rejeté:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}
	log.Printf("📥 Événement Stripe reçu : %s", event.Type)

	ctx := c.Request.Context()
	switch event.Type {
	case services.EventPaymentSucceeded:
		order, err := h.orderForIntent(ctx, &event.Intent)
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("⚠️ Aucune commande pour %s", event.Intent.ID)
			break
		}
		if err == nil {
			_, err = h.FinalizeOrder(ctx, order, &event.Intent)
		}
		if err != nil {
			log.Printf("❌ Finalisation via webhook %s: %v", event.Intent.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement"})
			return
		}

	case services.EventPaymentFailed:
		order, err := h.orderForIntent(ctx, &event.Intent)
		if err != nil {
			log.Printf("⚠️ Échec paiement %s sans commande: %v", event.Intent.ID, err)
			break
		}
		if _, err := h.Orders.TransitionStatus(ctx, order.ID, models.OrderPending, models.OrderPaymentFailed); err != nil {
			log.Printf("❌ Statut payment_failed non enregistré: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement"})
			return
		}
		log.Printf("💳 Paiement refusé pour la commande %s", order.Reference())

	default:
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) orderForIntent(ctx context.Context, intent *services.Intent) (*models.Order, error) {
	if raw := intent.Metadata["order_id"]; raw != "" {
		if id, err := gocql.ParseUUID(raw); err == nil {
			return h.Orders.Get(ctx, id)
		}
	}
	return h.Orders.GetByPaymentIntent(ctx, intent.ID)
}

// FinalizeOrder passe la commande à "paid" puis décrémente le stock, vide le
// panier et envoie la confirmation. Seul l'appel qui effectue la transition
// applique ces effets : les appels suivants retournent false.
// intent est nil pour un virement validé par un administrateur.
func (h *Handler) FinalizeOrder(ctx context.Context, order *models.Order, intent *services.Intent) (bool, error) {
	if intent != nil && intent.Amount != services.ToCents(order.Total) {
		log.Printf("❌ Montant Stripe %d ≠ commande %d (%s)", intent.Amount, services.ToCents(order.Total), order.ID)
		return false, errors.New("montant du paiement incohérent")
	}

	transitioned := false
	for _, from := range payableStatuses {
		ok, err := h.Orders.TransitionStatus(ctx, order.ID, from, models.OrderPaid)
		if err != nil {
			return false, err
		}
		if ok {
			transitioned = true
			break
		}
	}
	if !transitioned {
		return false, nil
	}
	order.Status = models.OrderPaid

	for _, item := range order.Items {
		id, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			continue
		}
		if _, err := h.Products.AdjustStock(ctx, id, -item.Quantity); err != nil {
			log.Printf("⚠️ Stock non décrémenté pour %s (%s): %v", item.Name, order.Reference(), err)
		}
		if h.Cache != nil {
			_ = h.Cache.Delete(ctx, item.ProductID)
		}
	}

	if h.Carts != nil && order.UserID != "" {
		if err := h.Carts.Clear(ctx, order.UserID); err != nil {
			log.Printf("⚠️ Panier non vidé pour %s: %v", order.UserID, err)
		}
	}
	if err := h.Mailer.SendOrderConfirmation(ctx, *order); err != nil {
		log.Printf("⚠️ E-mail de confirmation non envoyé (%s): %v", order.Email, err)
	}

	log.Printf("✅ Commande %s payée (%.2f€)", order.Reference(), order.Total)
	return true, nil
}
