package admin

import (
	"context"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
)

// OrderFinalizer applique les effets d'un paiement reçu (stock, panier, e-mail).
type OrderFinalizer interface {
	FinalizeOrder(ctx context.Context, order *models.Order, intent *services.Intent) (bool, error)
}

// Handler regroupe les routes du back-office (RequireAdmin).
type Handler struct {
	Users      repository.UserRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Orders     repository.OrderRepository
	Cache      cache.ProductCache
	Search     services.ProductSearch
	Images     services.ImageStore
	Finalizer  OrderFinalizer
}

func NewHandler(store repository.Store, productCache cache.ProductCache, search services.ProductSearch,
	images services.ImageStore, finalizer OrderFinalizer) *Handler {
	return &Handler{
		Users:      store.Users,
		Products:   store.Products,
		Categories: store.Categories,
		Orders:     store.Orders,
		Cache:      productCache,
		Search:     search,
		Images:     images,
		Finalizer:  finalizer,
	}
}
