package pa

import (
	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/shipping"
)

// BankAccount est le compte affiché pour les paiements par virement.
type BankAccount struct {
	Name string
	IBAN string
	BIC  string
}

// Handler gère le devis de livraison, le checkout et les paiements.
type Handler struct {
	Rates    *shipping.RateTable
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Carts    cache.CartStore
	Cache    cache.ProductCache
	Payments services.PaymentProvider
	Mailer   services.Mailer
	Bank     BankAccount
	Currency string
}

func NewHandler(rates *shipping.RateTable, store repository.Store, carts cache.CartStore, productCache cache.ProductCache,
	payments services.PaymentProvider, mailer services.Mailer, bank BankAccount, currency string) *Handler {
	if rates == nil {
		rates = shipping.DefaultRateTable()
	}
	if mailer == nil {
		mailer = services.LogMailer{}
	}
	if currency == "" {
		currency = "eur"
	}
	return &Handler{
		Rates:    rates,
		Products: store.Products,
		Orders:   store.Orders,
		Carts:    carts,
		Cache:    productCache,
		Payments: payments,
		Mailer:   mailer,
		Bank:     bank,
		Currency: currency,
	}
}
