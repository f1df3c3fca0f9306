package repository

import (
	"context"
	"sync"
	"testing"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProducts_FilterAndStock(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProducts()

	skincare := gocql.TimeUUID()
	makeup := gocql.TimeUUID()

	serum := &models.Product{Name: "Sérum", CategoryID: skincare, Stock: 3, IsActive: true}
	mascara := &models.Product{Name: "Mascara", CategoryID: makeup, Stock: 10, IsActive: true}
	hidden := &models.Product{Name: "Ancien", CategoryID: skincare, IsActive: false}
	for _, p := range []*models.Product{serum, mascara, hidden} {
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.List(ctx, ProductFilter{CategoryID: &skincare, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sérum", got[0].Name)

	all, err := repo.List(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stock, err := repo.AdjustStock(ctx, serum.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	_, err = repo.AdjustStock(ctx, serum.ID, -2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = repo.AdjustStock(ctx, gocql.TimeUUID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProducts_UpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProducts()

	p := &models.Product{Name: "Fond de teint", Price: 30, Stock: 8, IsActive: true}
	require.NoError(t, repo.Create(ctx, p))
	_, err := repo.AdjustStock(ctx, p.ID, -3)
	require.NoError(t, err)

	edit := *p
	edit.Price = 27
	edit.Stock = 8
	require.NoError(t, repo.Update(ctx, &edit))
	assert.Equal(t, 5, edit.Stock)

	stored, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 27.0, stored.Price)
	assert.Equal(t, 5, stored.Stock)
}

func TestMemoryProducts_ConcurrentDecrementNeverOversells(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProducts()
	p := &models.Product{Name: "Rouge", Stock: 10}
	require.NoError(t, repo.Create(ctx, p))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustStock(ctx, p.ID, -1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, sold)
	final, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, final.Stock)
}

func TestMemoryProducts_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProducts()
	p := &models.Product{Name: "Crème", Tags: []string{"bio"}}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Tags[0] = "modifié"
	got.Name = "modifié"

	again, _ := repo.Get(ctx, p.ID)
	assert.Equal(t, "Crème", again.Name)
	assert.Equal(t, []string{"bio"}, again.Tags)
}

func TestMemoryUsers_EmailUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUsers()

	u := &models.User{Email: " Alice@Example.com ", Role: models.RoleCustomer}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "alice@example.com", u.Email)

	err := repo.Create(ctx, &models.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, models.RoleAdmin))
	found, _ = repo.GetByID(ctx, u.ID)
	assert.Equal(t, models.RoleAdmin, found.Role)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateRole(ctx, u.ID, models.RoleAdmin), ErrNotFound)
}

func TestMemoryOrders_TransitionAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	o := &models.Order{UserID: "u1", Status: models.OrderPending, Items: []models.OrderItem{{ProductID: "p", Quantity: 1}}}
	require.NoError(t, repo.Create(ctx, o))
	require.NoError(t, repo.SetPaymentIntent(ctx, o.ID, "pi_123"))

	byPI, err := repo.GetByPaymentIntent(ctx, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byPI.ID)

	ok, err := repo.TransitionStatus(ctx, o.ID, models.OrderPending, models.OrderPaid)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(ctx, o.ID, models.OrderPending, models.OrderPaid)
	require.NoError(t, err)
	assert.False(t, ok)

	paid, err := repo.List(ctx, models.OrderPaid)
	require.NoError(t, err)
	assert.Len(t, paid, 1)

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.GetByPaymentIntent(ctx, "pi_absent")
	assert.ErrorIs(t, err, ErrNotFound)
}
