package admin

import (
	"log"
	"math"
	"net/http"
	"sort"
	"time"

	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type OrderStats struct {
	Total             int            `json:"total"`
	Revenue           float64        `json:"revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	ByStatus          map[string]int `json:"by_status"`
}

type ProductStats struct {
	Total      int `json:"total"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

type UserStats struct {
	Total int `json:"total"`
}

type LowStockProduct struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Stock     int        `json:"stock"`
	Threshold int        `json:"threshold"`
}

type Stats struct {
	Orders           OrderStats        `json:"orders"`
	Products         ProductStats      `json:"products"`
	Users            UserStats         `json:"users"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// ComputeStats agrège les indicateurs du tableau de bord. Le chiffre
// d'affaires ne compte que les commandes payées, expédiées ou livrées ; le
// stock bas suit le seuil de chaque produit (5 par défaut).
func ComputeStats(orders []models.Order, products []models.Product, userCount int, now time.Time) Stats {
	s := Stats{
		Orders:           OrderStats{Total: len(orders), ByStatus: make(map[string]int, len(models.OrderStatuses))},
		Products:         ProductStats{Total: len(products)},
		Users:            UserStats{Total: userCount},
		LowStockProducts: []LowStockProduct{},
		GeneratedAt:      now,
	}
	for _, status := range models.OrderStatuses {
		s.Orders.ByStatus[status] = 0
	}

	paid := 0
	for _, o := range orders {
		s.Orders.ByStatus[o.Status]++
		if models.CountsAsRevenue(o.Status) {
			s.Orders.Revenue += o.Total
			paid++
		}
	}
	s.Orders.Revenue = math.Round(s.Orders.Revenue*100) / 100
	if paid > 0 {
		s.Orders.AverageOrderValue = math.Round(s.Orders.Revenue/float64(paid)*100) / 100
	}

	for _, p := range products {
		switch {
		case p.IsOutOfStock():
			s.Products.OutOfStock++
		case p.IsLowStock():
			s.Products.LowStock++
			s.LowStockProducts = append(s.LowStockProducts, LowStockProduct{
				ID: p.ID, Name: p.Name, Stock: p.Stock, Threshold: p.StockThreshold(),
			})
		}
	}
	sort.Slice(s.LowStockProducts, func(i, j int) bool {
		return s.LowStockProducts[i].Stock < s.LowStockProducts[j].Stock
	})
	return s
}

// GET /api/admin/stats
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	orders, err := h.Orders.List(ctx, "")
	if err != nil {
		log.Printf("❌ Stats commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}
	products, err := h.Products.List(ctx, repository.ProductFilter{})
	if err != nil {
		log.Printf("❌ Stats produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		log.Printf("❌ Stats utilisateurs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}

	c.JSON(http.StatusOK, ComputeStats(orders, products, len(users), time.Now().UTC()))
}
