package models

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ProductID: "a", Price: 12.5, Quantity: 2, Weight: 100},
		{ProductID: "b", Price: 3.2, Quantity: 1, Weight: 250},
	}}

	assert.InDelta(t, 28.2, cart.Subtotal(), 1e-9)
	assert.Equal(t, 450.0, cart.Weight())
	assert.Equal(t, 3, cart.Count())
}

func TestCartMutations(t *testing.T) {
	var cart Cart
	cart.Add(CartItem{ProductID: "a", Name: "Sérum", Price: 10, Quantity: 1})
	cart.Add(CartItem{ProductID: "a", Name: "Sérum", Price: 9, Quantity: 2})
	cart.Add(CartItem{ProductID: "b", Name: "Crème", Price: 5, Quantity: 1})

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 9.0, cart.Items[0].Price)

	assert.True(t, cart.SetQuantity("b", 4))
	assert.Equal(t, 4, cart.Items[1].Quantity)

	assert.True(t, cart.SetQuantity("a", 0))
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "b", cart.Items[0].ProductID)

	assert.False(t, cart.Remove("zzz"))
	assert.True(t, cart.Remove("b"))
	assert.Empty(t, cart.Items)
}

func TestProductStockThreshold(t *testing.T) {
	p := Product{Stock: 5}
	assert.Equal(t, DefaultLowStockThreshold, p.StockThreshold())
	assert.True(t, p.IsLowStock())

	p.LowStockThreshold = 3
	assert.False(t, p.IsLowStock())

	p.Stock = 0
	assert.False(t, p.IsLowStock())
	assert.True(t, p.IsOutOfStock())
}

func TestOrderStatusHelpers(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderShipped))
	assert.False(t, ValidOrderStatus("lost"))

	assert.True(t, CountsAsRevenue(OrderPaid))
	assert.True(t, CountsAsRevenue(OrderDelivered))
	assert.False(t, CountsAsRevenue(OrderPending))
	assert.False(t, CountsAsRevenue(OrderCancelled))
}

func TestOrderReference(t *testing.T) {
	id, err := gocql.ParseUUID("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	assert.NoError(t, err)
	assert.Equal(t, "CMD-3F2504E04F8911D39A0C0305E82C3301", Order{ID: id}.Reference())

	// même préfixe de timestamp, commandes distinctes
	other, err := gocql.ParseUUID("3f2504e0-5a10-11d3-9a0c-0305e82c3301")
	assert.NoError(t, err)
	assert.NotEqual(t, Order{ID: id}.Reference(), Order{ID: other}.Reference())

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := Order{ID: gocql.TimeUUID()}.Reference()
		assert.False(t, seen[ref], ref)
		seen[ref] = true
	}
}
