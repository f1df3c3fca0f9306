package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	SessionName = "cosmetics_session"
	sessionKey  = "token"
)

func NewSessionStore(secret string, secure bool, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SaveSessionToken dépose le JWT dans le cookie de session.
func SaveSessionToken(c *gin.Context, store sessions.Store, token string) error {
	session, _ := store.Get(c.Request, SessionName)
	session.Values[sessionKey] = token
	return session.Save(c.Request, c.Writer)
}

func SessionToken(c *gin.Context, store sessions.Store) string {
	session, err := store.Get(c.Request, SessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionKey].(string)
	return token
}

func ClearSession(c *gin.Context, store sessions.Store) error {
	session, _ := store.Get(c.Request, SessionName)
	delete(session.Values, sessionKey)
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}
