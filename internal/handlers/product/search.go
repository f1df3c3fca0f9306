package product

import (
	"context"
	"log"
	"net/http"
	"strings"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const searchLimit = 50

// GET /api/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}
	ctx := c.Request.Context()

	source := "elastic"
	results, err := h.searchElastic(ctx, query)
	if err != nil || len(results) == 0 {
		if err != nil {
			log.Printf("⚠️ Recherche Elastic indisponible, repli base: %v", err)
		}
		source = "database"
		results, err = h.searchDatabase(ctx, query)
		if err != nil {
			log.Printf("❌ Erreur recherche produits: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.presentAll(ctx, results),
		"count":    len(results),
		"source":   source,
	})
}

func (h *Handler) searchElastic(ctx context.Context, query string) ([]models.Product, error) {
	if h.Search == nil {
		return nil, nil
	}
	ids, err := h.Search.Search(ctx, query, searchLimit)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	uuids := make([]gocql.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := gocql.ParseUUID(id); err == nil {
			uuids = append(uuids, u)
		}
	}
	found, err := h.Products.GetMany(ctx, uuids)
	if err != nil {
		return nil, err
	}

	// conserve l'ordre de pertinence d'Elastic
	byID := make(map[gocql.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range uuids {
		if p, ok := byID[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (h *Handler) searchDatabase(ctx context.Context, query string) ([]models.Product, error) {
	products, err := h.Products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	out := []models.Product{}
	for _, p := range products {
		if MatchesQuery(p, query) {
			out = append(out, p)
		}
		if len(out) == searchLimit {
			break
		}
	}
	return out, nil
}

// MatchesQuery vérifie que chaque mot de query apparaît dans le nom, la
// marque, la description ou les tags (sans tenir compte de la casse).
func MatchesQuery(p models.Product, query string) bool {
	haystack := strings.ToLower(strings.Join(append([]string{p.Name, p.Brand, p.Description}, p.Tags...), " "))
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}
