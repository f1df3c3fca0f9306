// Package repository isole l'accès aux données (ScyllaDB en production,
// mémoire pour les tests et le développement local).
package repository

import (
	"context"
	"errors"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

var (
	ErrNotFound          = errors.New("introuvable")
	ErrEmailTaken        = errors.New("email déjà utilisé")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrConflict          = errors.New("modification concurrente")
)

type ProductFilter struct {
	CategoryID *gocql.UUID
	ActiveOnly bool
}

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetMany(ctx context.Context, ids []gocql.UUID) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	// Update ne touche jamais au stock : p.Stock reçoit la valeur stockée.
	// Les variations de stock passent par AdjustStock.
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id gocql.UUID) error
	// AdjustStock ajoute delta au stock et retourne le nouveau stock.
	// ErrInsufficientStock si le résultat serait négatif.
	AdjustStock(ctx context.Context, id gocql.UUID, delta int) (int, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id gocql.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id gocql.UUID, role string) error
	Delete(ctx context.Context, id gocql.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id gocql.UUID) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// List retourne toutes les commandes, filtrées par statut si status != "".
	List(ctx context.Context, status string) ([]models.Order, error)
	SetPaymentIntent(ctx context.Context, id gocql.UUID, paymentIntentID string) error
	UpdateStatus(ctx context.Context, id gocql.UUID, status string) error
	// TransitionStatus passe de from à to uniquement si le statut courant vaut from.
	TransitionStatus(ctx context.Context, id gocql.UUID, from, to string) (bool, error)
}

// Store regroupe les dépôts utilisés par l'application.
type Store struct {
	Products   ProductRepository
	Categories CategoryRepository
	Users      UserRepository
	Orders     OrderRepository
}

// mapNotFound traduit l'erreur gocql en ErrNotFound.
func mapNotFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
