package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	CartTTL = 30 * 24 * time.Hour

	CartUpdated = "updated"
	CartCleared = "cleared"
)

// CartStore conserve le panier d'un utilisateur et notifie ses changements.
type CartStore interface {
	Get(ctx context.Context, userID string) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) error
	Clear(ctx context.Context, userID string) error
	// Subscribe retourne les notifications ("updated"/"cleared") du panier et
	// une fonction de désabonnement.
	Subscribe(ctx context.Context, userID string) (<-chan string, func(), error)
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// RedisCartStore : clé cart:<userID> (JSON, TTL 30 jours) + canal pub/sub du même nom.
type RedisCartStore struct {
	client *redis.Client
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func (s *RedisCartStore) Get(ctx context.Context, userID string) (models.Cart, error) {
	cart := models.Cart{UserID: userID, Items: []models.CartItem{}}

	data, err := s.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return cart, nil
	}
	if err != nil {
		return cart, fmt.Errorf("lecture panier: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &cart.Items); err != nil {
		return cart, fmt.Errorf("décodage panier: %w", err)
	}
	return cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, cart models.Cart) error {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encodage panier: %w", err)
	}

	key := cartKey(cart.UserID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, CartTTL)
	pipe.Publish(ctx, key, CartUpdated)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	key := cartKey(userID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Publish(ctx, key, CartCleared)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Subscribe(ctx context.Context, userID string) (<-chan string, func(), error) {
	pubsub := s.client.Subscribe(ctx, cartKey(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("abonnement panier: %w", err)
	}

	out := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}, nil
}
