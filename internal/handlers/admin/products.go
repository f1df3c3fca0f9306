package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const maxImageSize = 5 << 20

// POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides", "details": err.Error()})
		return
	}
	p.ID = gocql.UUID{}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}

	ctx := c.Request.Context()
	if err := h.Products.Create(ctx, &p); err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	h.refreshIndex(ctx, p)
	log.Printf("✅ Produit créé: %s", p.Name)
	c.JSON(http.StatusCreated, p)
}

// PUT /api/admin/products/:id
// Le cache est mis à jour avant l'écriture Scylla et restauré si elle échoue.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, err := h.Products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	p.ID = id
	p.CreatedAt = current.CreatedAt
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.ImageURLs == nil {
		p.ImageURLs = current.ImageURLs
	}
	wantStock := p.Stock
	p.Stock = current.Stock

	if err := h.saveOptimistic(ctx, *current, &p); err != nil {
		log.Printf("❌ Erreur mise à jour produit %s: %v", id, err)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	// Le stock est ajusté par différence, les ventes concurrentes sont conservées
	if delta := wantStock - current.Stock; delta != 0 {
		stock, err := h.Products.AdjustStock(ctx, id, delta)
		if errors.Is(err, repository.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock modifié entre-temps, réessayez"})
			return
		}
		if err != nil {
			log.Printf("❌ Erreur ajustement stock %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du stock"})
			return
		}
		p.Stock = stock
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, p); err != nil {
			log.Printf("⚠️ Cache produit indisponible: %v", err)
		}
	}

	h.refreshIndex(ctx, p)
	c.JSON(http.StatusOK, p)
}

// DELETE /api/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := c.Request.Context()
	err = h.Products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur suppression produit %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	if h.Cache != nil {
		_ = h.Cache.Delete(ctx, id.String())
	}
	if h.Search != nil {
		if err := h.Search.Delete(ctx, id.String()); err != nil && !errors.Is(err, services.ErrSearchUnavailable) {
			log.Printf("⚠️ Produit %s non retiré de l'index: %v", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// POST /api/admin/products/:id/image (multipart, champ "image")
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") || file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image invalide (type image/*, 5 Mo max)"})
		return
	}

	ctx := c.Request.Context()
	current, err := h.Products.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier illisible"})
		return
	}
	defer f.Close()

	key, err := h.Images.Upload(ctx, id.String(), file.Filename, f, file.Size, contentType)
	if errors.Is(err, services.ErrImagesUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images non configuré"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur upload image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	updated := *current
	updated.ImageURLs = append(append([]string{}, current.ImageURLs...), key)
	if err := h.saveOptimistic(ctx, *current, &updated); err != nil {
		log.Printf("❌ Erreur ajout image au produit %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key, "image_urls": updated.ImageURLs})
}

// saveOptimistic publie next dans le cache, écrit en base, et restaure
// previous dans le cache si l'écriture échoue.
func (h *Handler) saveOptimistic(ctx context.Context, previous models.Product, next *models.Product) error {
	noop := func(context.Context) error { return nil }
	apply, rollback := noop, noop
	if h.Cache != nil {
		apply = func(ctx context.Context) error {
			if err := h.Cache.Set(ctx, *next); err != nil {
				log.Printf("⚠️ Cache produit indisponible: %v", err)
			}
			return nil
		}
		rollback = func(ctx context.Context) error { return h.Cache.Set(ctx, previous) }
	}
	return utils.ApplyThenConfirm(ctx, apply,
		func(ctx context.Context) error { return h.Products.Update(ctx, next) },
		rollback)
}

func (h *Handler) refreshIndex(ctx context.Context, p models.Product) {
	if h.Search == nil {
		return
	}
	if err := h.Search.Index(ctx, p); err != nil && !errors.Is(err, services.ErrSearchUnavailable) {
		log.Printf("⚠️ Index de recherche non mis à jour pour %s: %v", p.Name, err)
	}
}

// Slugify : minuscules, lettres et chiffres conservés, le reste devient "-".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
