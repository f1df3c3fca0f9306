package models

import (
	"time"

	"github.com/gocql/gocql"
)

// DefaultLowStockThreshold s'applique aux produits sans seuil configuré.
const DefaultLowStockThreshold = 5

type Product struct {
	ID                gocql.UUID `json:"id" db:"product_id"`
	Name              string     `json:"name" db:"name" binding:"required"`
	Slug              string     `json:"slug" db:"slug"`
	Brand             string     `json:"brand,omitempty" db:"brand"`
	Description       string     `json:"description" db:"description"`
	Price             float64    `json:"price" db:"price" binding:"gte=0"`
	Stock             int        `json:"stock" db:"stock" binding:"gte=0"`
	LowStockThreshold int        `json:"low_stock_threshold" db:"low_stock_threshold" binding:"gte=0"`
	SKU               string     `json:"sku" db:"sku"`
	Weight            float64    `json:"weight" db:"weight" binding:"gte=0"` // grammes
	CategoryID        gocql.UUID `json:"category_id" db:"category_id"`
	ImageURLs         []string   `json:"image_urls" db:"image_urls"`
	Tags              []string   `json:"tags" db:"tags"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// StockThreshold retourne le seuil de stock bas effectif du produit.
func (p Product) StockThreshold() int {
	if p.LowStockThreshold > 0 {
		return p.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// IsLowStock : encore en stock mais sous le seuil.
func (p Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.StockThreshold()
}

func (p Product) IsOutOfStock() bool {
	return p.Stock <= 0
}

// MainImage retourne la première image (vide si aucune).
func (p Product) MainImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
