package pa

import (
	"log"
	"net/http"

	"cosmetics_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
)

const errShippingInternal = "Erreur lors du calcul des frais de livraison"

// quoteInput distingue un champ absent (nil) d'un zéro explicite.
type quoteInput struct {
	Country    string   `json:"country" form:"country"`
	PostalCode string   `json:"postalCode" form:"postalCode"`
	Weight     *float64 `json:"weight" form:"weight"`
	Value      *float64 `json:"value" form:"value"`
}

func (in quoteInput) request() (shipping.Request, bool) {
	if in.Weight == nil || in.Value == nil {
		return shipping.Request{}, false
	}
	return shipping.Request{
		Country:    in.Country,
		PostalCode: in.PostalCode,
		Weight:     *in.Weight,
		Value:      *in.Value,
	}, true
}

// CalculateShipping répond à GET (query) et POST (JSON) /api/shipping/calculate.
func (h *Handler) CalculateShipping(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panique calcul livraison: %v", r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errShippingInternal})
		}
	}()

	var in quoteInput
	if c.Request.Method == http.MethodGet {
		if err := c.ShouldBindQuery(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": shipping.ErrMissingParams})
			return
		}
		// "value=" vide équivaut à un paramètre absent
		if c.Query("weight") == "" {
			in.Weight = nil
		}
		if c.Query("value") == "" {
			in.Value = nil
		}
	} else if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("❌ Corps de requête livraison illisible: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errShippingInternal})
		return
	}

	req, ok := in.request()
	if !ok || !req.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": shipping.ErrMissingParams})
		return
	}

	h.respondQuote(c, h.Rates.Calculate(req))
}

// respondQuote : 200 avec le devis, 400 avec le devis quand aucune méthode n'est disponible.
func (h *Handler) respondQuote(c *gin.Context, resp shipping.Response) {
	if len(resp.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            resp.Errors[0],
			"availableMethods": resp.AvailableMethods,
			"defaultMethod":    resp.DefaultMethod,
			"errors":           resp.Errors,
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}
