package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminAudit trace les actions d'écriture du back-office.
func AdminAudit() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		status := c.Writer.Status()
		icon := "📝"
		if status >= http.StatusBadRequest {
			icon = "⚠️"
		}
		log.Printf("%s [admin] %s %s %s → %d", icon, c.GetString("email"), c.Request.Method, c.Request.URL.Path, status)
	}
}
