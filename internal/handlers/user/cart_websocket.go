package user

import (
	"log"
	"net/http"
	"time"

	"cosmetics_back_end/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origines déjà filtrées par CORS
		return true
	},
}

// GET /api/cart/ws : pousse le panier à chaque modification.
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	events, unsubscribe, err := h.Carts.Subscribe(ctx, userID)
	if err != nil {
		log.Printf("❌ Abonnement panier impossible: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Synchronisation indisponible"})
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// détecte la fermeture côté client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event != cache.CartUpdated && event != cache.CartCleared {
				continue
			}
			cart, err := h.Carts.Get(ctx, userID)
			if err != nil {
				log.Printf("⚠️ Lecture panier pour WebSocket: %v", err)
				continue
			}
			msg := cartView(cart)
			msg["type"] = "cart_updated"
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
