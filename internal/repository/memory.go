package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
)

// NewMemoryStore construit un Store entièrement en mémoire (tests, STORAGE_BACKEND=memory).
func NewMemoryStore() *Store {
	return &Store{
		Products:   NewMemoryProducts(),
		Categories: NewMemoryCategories(),
		Users:      NewMemoryUsers(),
		Orders:     NewMemoryOrders(),
	}
}

// --- Produits ---

type MemoryProducts struct {
	mu       sync.RWMutex
	products map[gocql.UUID]models.Product
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{products: make(map[gocql.UUID]models.Product)}
}

func cloneProduct(p models.Product) models.Product {
	p.ImageURLs = append([]string(nil), p.ImageURLs...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

func (r *MemoryProducts) List(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Product{}
	for _, p := range r.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryProducts) Get(_ context.Context, id gocql.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProducts) GetMany(_ context.Context, ids []gocql.UUID) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *MemoryProducts) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.Stock = current.Stock
	r.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *MemoryProducts) Delete(_ context.Context, id gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProducts) AdjustStock(_ context.Context, id gocql.UUID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Stock+delta < 0 {
		return p.Stock, ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p.Stock, nil
}

// --- Catégories ---

type MemoryCategories struct {
	mu         sync.RWMutex
	categories map[gocql.UUID]models.Category
}

func NewMemoryCategories() *MemoryCategories {
	return &MemoryCategories{categories: make(map[gocql.UUID]models.Category)}
}

func (r *MemoryCategories) List(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryCategories) Get(_ context.Context, id gocql.UUID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCategories) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	c.CreatedAt = time.Now().UTC()
	r.categories[c.ID] = *c
	return nil
}

// --- Utilisateurs ---

type MemoryUsers struct {
	mu      sync.RWMutex
	users   map[gocql.UUID]models.User
	byEmail map[string]gocql.UUID
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		users:   make(map[gocql.UUID]models.User),
		byEmail: make(map[string]gocql.UUID),
	}
}

func (r *MemoryUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = normalizeEmail(u.Email)
	if _, taken := r.byEmail[u.Email]; taken {
		return ErrEmailTaken
	}
	if u.ID == (gocql.UUID{}) {
		u.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id gocql.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryUsers) UpdateRole(_ context.Context, id gocql.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUsers) Delete(_ context.Context, id gocql.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, u.Email)
	return nil
}

// --- Commandes ---

type MemoryOrders struct {
	mu     sync.RWMutex
	orders map[gocql.UUID]models.Order
	byPI   map[string]gocql.UUID
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{
		orders: make(map[gocql.UUID]models.Order),
		byPI:   make(map[string]gocql.UUID),
	}
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}

func (r *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == (gocql.UUID{}) {
		o.ID = gocql.TimeUUID()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.orders[o.ID] = cloneOrder(*o)
	if o.PaymentIntentID != "" {
		r.byPI[o.PaymentIntentID] = o.ID
	}
	return nil
}

func (r *MemoryOrders) Get(_ context.Context, id gocql.UUID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrders) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	r.mu.RLock()
	id, ok := r.byPI[paymentIntentID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *MemoryOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *MemoryOrders) List(_ context.Context, status string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return status == "" || o.Status == status }), nil
}

func (r *MemoryOrders) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryOrders) SetPaymentIntent(_ context.Context, id gocql.UUID, paymentIntentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentIntentID = paymentIntentID
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	r.byPI[paymentIntentID] = id
	return nil
}

func (r *MemoryOrders) UpdateStatus(_ context.Context, id gocql.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

func (r *MemoryOrders) TransitionStatus(_ context.Context, id gocql.UUID, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return true, nil
}
