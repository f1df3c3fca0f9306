package cache

import (
	"context"
	"sync"
	"time"

	"cosmetics_back_end/internal/models"
)

// Implémentations en mémoire, utilisées par les tests et en développement
// local sans Redis.

type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string][]models.CartItem
	subs  map[string]map[chan string]struct{}
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string][]models.CartItem),
		subs:  make(map[string]map[chan string]struct{}),
	}
}

func (s *MemoryCartStore) Get(_ context.Context, userID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append([]models.CartItem{}, s.carts[userID]...)
	return models.Cart{UserID: userID, Items: items}, nil
}

func (s *MemoryCartStore) Save(_ context.Context, cart models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.UserID] = append([]models.CartItem{}, cart.Items...)
	s.publish(cart.UserID, CartUpdated)
	return nil
}

func (s *MemoryCartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	s.publish(userID, CartCleared)
	return nil
}

// publish n'attend jamais un abonné lent : le message est abandonné si son tampon est plein.
func (s *MemoryCartStore) publish(userID, payload string) {
	for ch := range s.subs[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (s *MemoryCartStore) Subscribe(_ context.Context, userID string) (<-chan string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan string, 8)
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[chan string]struct{})
	}
	s.subs[userID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[userID], ch)
			close(ch)
		})
	}, nil
}

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = memoryEntry{expiresAt: now.Add(window)}
	}
	e.value++
	c.entries[key] = e
	return e.value, nil
}

func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return 0, nil
	}
	return e.value, nil
}

func (c *MemoryCounter) Reset(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}

type MemoryProductCache struct {
	mu       sync.Mutex
	products map[string]models.Product
}

func NewMemoryProductCache() *MemoryProductCache {
	return &MemoryProductCache{products: make(map[string]models.Product)}
}

func (c *MemoryProductCache) Get(_ context.Context, id string) (*models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *MemoryProductCache) Set(_ context.Context, p models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID.String()] = p
	return nil
}

func (c *MemoryProductCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
	return nil
}
