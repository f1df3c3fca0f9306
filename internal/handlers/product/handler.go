package product

import (
	"context"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
)

// Handler sert le catalogue public.
type Handler struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Cache      cache.ProductCache
	Search     services.ProductSearch
	Images     services.ImageStore
}

func NewHandler(store repository.Store, productCache cache.ProductCache, search services.ProductSearch, images services.ImageStore) *Handler {
	return &Handler{
		Products:   store.Products,
		Categories: store.Categories,
		Cache:      productCache,
		Search:     search,
		Images:     images,
	}
}

// present remplace les clés MinIO par des URL signées.
func (h *Handler) present(ctx context.Context, p models.Product) models.Product {
	if h.Images != nil && len(p.ImageURLs) > 0 {
		p.ImageURLs = h.Images.SignURLs(ctx, p.ImageURLs)
	}
	return p
}

func (h *Handler) presentAll(ctx context.Context, products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = h.present(ctx, p)
	}
	return out
}
