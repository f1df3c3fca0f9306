package middleware

import (
	"log"
	"net/http"
	"strings"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Auth authentifie les requêtes par JWT (header Bearer ou cookie de session).
type Auth struct {
	secret    []byte
	store     sessions.Store
	blacklist cache.TokenBlacklist
}

func NewAuth(secret []byte, store sessions.Store, blacklist cache.TokenBlacklist) *Auth {
	return &Auth{secret: secret, store: store, blacklist: blacklist}
}

func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := a.token(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			return
		}

		claims, err := utils.ParseJWT(a.secret, tokenString)
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			return
		}

		if a.blacklist != nil {
			revoked, err := a.blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Printf("⚠️ Vérification blacklist impossible: %v", err)
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expirée"})
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

func (a *Auth) token(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if a.store == nil {
		return "", false
	}
	token := SessionToken(c, a.store)
	return token, token != ""
}

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}

// CurrentClaims retourne les claims posés par Auth.Required.
func CurrentClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get("claims")
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
