package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

const (
	OrderPending          = "pending"
	OrderAwaitingTransfer = "awaiting_transfer"
	OrderPaid             = "paid"
	OrderShipped          = "shipped"
	OrderDelivered        = "delivered"
	OrderCancelled        = "cancelled"
	OrderPaymentFailed    = "payment_failed"
)

const (
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
)

// OrderStatuses liste les statuts acceptés par l'administration.
var OrderStatuses = []string{
	OrderPending, OrderAwaitingTransfer, OrderPaid, OrderShipped,
	OrderDelivered, OrderCancelled, OrderPaymentFailed,
}

func ValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CountsAsRevenue : seules les commandes encaissées entrent dans le chiffre d'affaires.
func CountsAsRevenue(status string) bool {
	return status == OrderPaid || status == OrderShipped || status == OrderDelivered
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"`
}

type Order struct {
	ID                 gocql.UUID  `json:"id"`
	UserID             string      `json:"user_id"`
	Email              string      `json:"email"`
	Items              []OrderItem `json:"items"`
	ShippingAddress    Address     `json:"shipping_address"`
	ShippingMethodID   string      `json:"shipping_method_id"`
	ShippingMethodName string      `json:"shipping_method_name"`
	ShippingPrice      float64     `json:"shipping_price"`
	Subtotal           float64     `json:"subtotal"`
	Total              float64     `json:"total"`
	Currency           string      `json:"currency"`
	PaymentMethod      string      `json:"payment_method"`
	PaymentIntentID    string      `json:"payment_intent_id,omitempty"`
	PaymentReference   string      `json:"payment_reference,omitempty"`
	Status             string      `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ItemsFromCart fige les lignes du panier dans la commande.
func ItemsFromCart(cart Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		})
	}
	return items
}

// Reference est la communication du virement : l'ID complet, sans tirets.
func (o Order) Reference() string {
	return "CMD-" + strings.ToUpper(strings.ReplaceAll(o.ID.String(), "-", ""))
}
