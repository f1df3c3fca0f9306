package user

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"cosmetics_back_end/internal/middleware"
	"cosmetics_back_end/internal/models"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom, email et mot de passe requis"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if errors.Is(err, utils.ErrWeakPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur hash mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	u := models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		Role:     models.RoleCustomer,
	}
	if err := h.Users.Create(c.Request.Context(), &u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email déjà utilisé"})
			return
		}
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	log.Printf("✅ Nouveau compte: %s", u.Email)
	h.respondWithToken(c, http.StatusCreated, u)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	u, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	h.respondWithToken(c, http.StatusOK, *u)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, u models.User) {
	token, _, err := utils.GenerateJWT(h.Secret, u, h.TokenTTL)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	if h.Sessions != nil {
		if err := middleware.SaveSessionToken(c, h.Sessions, token); err != nil {
			log.Printf("⚠️ Cookie de session non enregistré: %v", err)
		}
	}
	c.JSON(status, gin.H{"token": token, "user": u})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok && h.Blacklist != nil {
		if err := h.Blacklist.Revoke(c.Request.Context(), claims.ID, claims.Remaining()); err != nil {
			log.Printf("⚠️ Révocation token impossible: %v", err)
		}
	}
	if h.Sessions != nil {
		if err := middleware.ClearSession(c, h.Sessions); err != nil {
			log.Printf("⚠️ Suppression session impossible: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	id, err := gocql.ParseUUID(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role})
}
