package pa

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var errEmptyCart = errors.New("Panier vide")

type stockError struct {
	Product string
	Reason  string
}

func (e *stockError) Error() string { return fmt.Sprintf("%s: %s", e.Product, e.Reason) }

type shippingOptionsInput struct {
	Country    string `json:"country" binding:"required"`
	PostalCode string `json:"postal_code"`
}

type checkoutInput struct {
	ShippingAddress  models.Address `json:"shipping_address" binding:"required"`
	ShippingMethodID string         `json:"shipping_method_id" binding:"required"`
	PaymentMethod    string         `json:"payment_method" binding:"required,oneof=card bank_transfer"`
}

// quoteCart chiffre la livraison du panier : poids des articles + emballage.
func (h *Handler) quoteCart(cart models.Cart, country, postalCode string) shipping.Response {
	return h.Rates.Calculate(shipping.Request{
		Country:    country,
		PostalCode: postalCode,
		Weight:     cart.Weight() + h.Rates.PackagingWeight,
		Value:      cart.Subtotal(),
	})
}

// POST /api/checkout/shipping-options
func (h *Handler) ShippingOptions(c *gin.Context) {
	var input shippingOptionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": shipping.ErrMissingParams})
		return
	}

	cart, err := h.Carts.Get(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	if len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyCart.Error()})
		return
	}

	h.respondQuote(c, h.quoteCart(cart, input.Country, input.PostalCode))
}

// POST /api/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse, méthode de livraison et moyen de paiement requis"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	cart, err := h.Carts.Get(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}

	cart, err = h.refreshCart(ctx, cart)
	var stockErr *stockError
	switch {
	case errors.Is(err, errEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": stockErr.Reason, "product": stockErr.Product})
		return
	case err != nil:
		log.Printf("❌ Erreur vérification panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification du panier"})
		return
	}

	quote := h.quoteCart(cart, input.ShippingAddress.Country, input.ShippingAddress.PostalCode)
	chosen, ok := quote.Find(input.ShippingMethodID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "Méthode de livraison indisponible pour cette commande",
			"availableMethods": quote.AvailableMethods,
			"errors":           quote.Errors,
		})
		return
	}

	subtotal := roundCents(cart.Subtotal())
	order := models.Order{
		UserID:             userID,
		Email:              c.GetString("email"),
		Items:              models.ItemsFromCart(cart),
		ShippingAddress:    input.ShippingAddress,
		ShippingMethodID:   chosen.Method.ID,
		ShippingMethodName: chosen.Method.Name,
		ShippingPrice:      chosen.Price,
		Subtotal:           subtotal,
		Total:              roundCents(subtotal + chosen.Price),
		Currency:           h.Currency,
		PaymentMethod:      input.PaymentMethod,
		Status:             models.OrderPending,
	}
	if input.PaymentMethod == models.PaymentBankTransfer {
		order.Status = models.OrderAwaitingTransfer
	}
	order.ID = gocql.TimeUUID()
	order.PaymentReference = order.Reference()

	if err := h.Orders.Create(ctx, &order); err != nil {
		log.Printf("❌ Erreur création commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	if input.PaymentMethod == models.PaymentCard {
		h.checkoutCard(c, order)
		return
	}
	h.checkoutTransfer(c, order)
}

func (h *Handler) checkoutCard(c *gin.Context, order models.Order) {
	ctx := c.Request.Context()
	intent, err := h.Payments.CreateIntent(ctx, services.ToCents(order.Total), map[string]string{
		"order_id": order.ID.String(),
		"user_id":  order.UserID,
	})
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		if err := h.Orders.UpdateStatus(ctx, order.ID, models.OrderPaymentFailed); err != nil {
			log.Printf("⚠️ Statut commande %s non mis à jour: %v", order.ID, err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur création paiement"})
		return
	}

	if err := h.Orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		log.Printf("❌ Erreur liaison PaymentIntent %s: %v", intent.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return
	}

	log.Printf("💳 Checkout créé: %s (%.2f€) pour %s", intent.ID, order.Total, order.Email)
	c.JSON(http.StatusCreated, gin.H{
		"order_id":      order.ID,
		"client_secret": intent.ClientSecret,
		"amount":        order.Total,
		"currency":      order.Currency,
	})
}

func (h *Handler) checkoutTransfer(c *gin.Context, order models.Order) {
	transfer := services.TransferDetails{
		Name:      h.Bank.Name,
		IBAN:      h.Bank.IBAN,
		BIC:       h.Bank.BIC,
		Amount:    order.Total,
		Reference: order.Reference(),
	}

	qr, err := services.SepaQR(transfer)
	if err != nil {
		log.Printf("⚠️ QR SEPA non généré pour %s: %v", order.Reference(), err)
	}
	if err := h.Mailer.SendTransferInstructions(c.Request.Context(), order, transfer, qr); err != nil {
		log.Printf("⚠️ E-mail de virement non envoyé (%s): %v", order.Email, err)
	}

	log.Printf("🏦 Commande %s en attente de virement (%.2f€)", order.Reference(), order.Total)
	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"amount":   order.Total,
		"transfer": transfer,
		"qr_code":  qr,
	})
}

// refreshCart recharge prix, poids et stock depuis la base.
func (h *Handler) refreshCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	if len(cart.Items) == 0 {
		return cart, errEmptyCart
	}

	fresh := models.Cart{UserID: cart.UserID, Items: make([]models.CartItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		id, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			return cart, &stockError{Product: item.Name, Reason: "Produit invalide"}
		}
		p, err := h.Products.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
			return cart, &stockError{Product: item.Name, Reason: "Produit indisponible"}
		}
		if err != nil {
			return cart, err
		}
		if item.Quantity > p.Stock {
			return cart, &stockError{Product: p.Name, Reason: "Stock insuffisant"}
		}

		item.Name = p.Name
		item.Price = p.Price
		item.Weight = p.Weight
		fresh.Items = append(fresh.Items, item)
	}
	return fresh, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
