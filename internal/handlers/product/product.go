package product

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GET /api/products?category=&page=&limit=&sort=price_asc|price_desc|newest
func (h *Handler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{ActiveOnly: true}
	if raw := c.Query("category"); raw != "" {
		id, err := gocql.ParseUUID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
			return
		}
		filter.CategoryID = &id
	}

	page := queryInt(c, "page", 1, 1, 1<<20)
	limit := queryInt(c, "limit", defaultPageSize, 1, maxPageSize)

	products, err := h.Products.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur lecture produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}

	SortProducts(products, c.Query("sort"))
	total := len(products)
	products = paginate(products, page, limit)

	c.JSON(http.StatusOK, gin.H{
		"products": h.presentAll(c.Request.Context(), products),
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	ctx := c.Request.Context()

	if h.Cache != nil {
		if p, ok := h.Cache.Get(ctx, id.String()); ok && p.IsActive {
			c.JSON(http.StatusOK, h.present(ctx, *p))
			return
		}
	}

	p, err := h.Products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture produit %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, *p); err != nil {
			log.Printf("⚠️ Cache produit non mis à jour: %v", err)
		}
	}
	c.JSON(http.StatusOK, h.present(ctx, *p))
}

// SortProducts trie sur place ; un tri inconnu garde l'ordre par nom.
func SortProducts(products []models.Product, order string) {
	var less func(a, b models.Product) bool
	switch order {
	case "price_asc":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "price_desc":
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case "newest":
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func paginate(products []models.Product, page, limit int) []models.Product {
	start := (page - 1) * limit
	if start >= len(products) {
		return []models.Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

func queryInt(c *gin.Context, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
