package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"cosmetics_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	LoginMaxAttempts    = 5
	APIMaxRequests      = 100 // par minute
	ShippingMaxRequests = 60  // par minute

	LoginCooldown = 15 * time.Minute
	APIWindow     = time.Minute
)

type RateLimiter struct {
	counter cache.Counter
}

func NewRateLimiter(counter cache.Counter) *RateLimiter {
	return &RateLimiter{counter: counter}
}

// Limit applique une fenêtre fixe par IP. Si Redis est indisponible la requête passe.
func (l *RateLimiter) Limit(name string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()

		requests, err := l.counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("⚠️ Rate limit %s indisponible: %v", name, err)
			c.Next()
			return
		}

		remaining := max - requests
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if requests > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes", int(window.Seconds())),
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) API() gin.HandlerFunc {
	return l.Limit("api_requests", APIMaxRequests, APIWindow)
}

func (l *RateLimiter) Shipping() gin.HandlerFunc {
	return l.Limit("shipping_requests", ShippingMaxRequests, APIWindow)
}

// Login limite les échecs de connexion par email : après LoginMaxAttempts
// réponses 401, l'email est bloqué pendant LoginCooldown.
func (l *RateLimiter) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if blocked, _ := l.counter.Get(ctx, cooldownKey); blocked > 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			attempts, err := l.counter.Incr(ctx, key, LoginCooldown)
			if err != nil {
				log.Printf("⚠️ Compteur de connexion indisponible: %v", err)
				return
			}
			if attempts >= LoginMaxAttempts {
				log.Printf("🔒 Connexion bloquée %d minutes pour %s", int(LoginCooldown.Minutes()), email)
				_, _ = l.counter.Incr(ctx, cooldownKey, LoginCooldown)
				_ = l.counter.Reset(ctx, key)
			}
		case http.StatusOK:
			_ = l.counter.Reset(ctx, key)
		}
	}
}
