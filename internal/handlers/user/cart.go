package user

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

func cartView(cart models.Cart) gin.H {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"items":    items,
		"subtotal": cart.Subtotal(),
		"weight":   cart.Weight(),
		"count":    cart.Count(),
	}
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.Carts.Get(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		log.Printf("❌ Erreur lecture panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

// POST /api/cart/items
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	p, ok := h.loadProduct(c, input.ProductID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cart, err := h.Carts.Get(ctx, c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}

	wanted := input.Quantity
	if i, found := cart.Find(p.ID.String()); found {
		wanted += cart.Items[i].Quantity
	}
	if wanted > p.Stock {
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant", "available": p.Stock})
		return
	}

	cart.Add(models.CartItem{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  input.Quantity,
		Weight:    p.Weight,
		ImageURL:  p.MainImage(),
	})
	h.saveCart(c, cart)
}

// PUT /api/cart/items/:productId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		Quantity *int `json:"quantity" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ctx := c.Request.Context()
	productID := strings.ToLower(c.Param("productId"))
	cart, err := h.Carts.Get(ctx, c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	if _, found := cart.Find(productID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	}

	quantity := *input.Quantity
	if quantity > 0 {
		p, ok := h.loadProduct(c, productID)
		if !ok {
			return
		}
		if quantity > p.Stock {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant", "available": p.Stock})
			return
		}
	}

	cart.SetQuantity(productID, quantity)
	h.saveCart(c, cart)
}

// DELETE /api/cart/items/:productId
func (h *Handler) RemoveFromCart(c *gin.Context) {
	ctx := c.Request.Context()
	cart, err := h.Carts.Get(ctx, c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}
	if !cart.Remove(strings.ToLower(c.Param("productId"))) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	}
	h.saveCart(c, cart)
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := h.Carts.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("❌ Erreur vidage panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}
	c.JSON(http.StatusOK, cartView(models.Cart{UserID: userID}))
}

func (h *Handler) saveCart(c *gin.Context, cart models.Cart) {
	cart.UserID = c.GetString("user_id")
	if err := h.Carts.Save(c.Request.Context(), cart); err != nil {
		log.Printf("❌ Erreur sauvegarde panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

// loadProduct répond lui-même en cas d'échec.
func (h *Handler) loadProduct(c *gin.Context, rawID string) (*models.Product, bool) {
	id, err := gocql.ParseUUID(rawID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return nil, false
	}

	p, err := h.Products.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return nil, false
	}
	if err != nil {
		log.Printf("❌ Erreur lecture produit %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return nil, false
	}
	return p, true
}
