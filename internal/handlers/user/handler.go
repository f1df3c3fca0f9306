package user

import (
	"time"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/repository"

	"github.com/gorilla/sessions"
)

// Handler regroupe l'authentification, le panier et les commandes client.
type Handler struct {
	Users     repository.UserRepository
	Products  repository.ProductRepository
	Orders    repository.OrderRepository
	Carts     cache.CartStore
	Blacklist cache.TokenBlacklist
	Sessions  sessions.Store
	Secret    []byte
	TokenTTL  time.Duration
}

func NewHandler(store repository.Store, carts cache.CartStore, blacklist cache.TokenBlacklist, sessionStore sessions.Store, secret []byte, ttl time.Duration) *Handler {
	return &Handler{
		Users:     store.Users,
		Products:  store.Products,
		Orders:    store.Orders,
		Carts:     carts,
		Blacklist: blacklist,
		Sessions:  sessionStore,
		Secret:    secret,
		TokenTTL:  ttl,
	}
}
