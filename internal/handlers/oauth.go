package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"velvet_back_end/internal/cache"
	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"
	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// ================== OAUTH (GOOGLE) ==================

// GET /auth/:provider?redirect=...
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")

	state := randomState()
	if redirect := c.Query("redirect"); redirect != "" {
		if err := cache.StoreOAuthRedirect(state, redirect); err != nil {
			log.Printf("⚠️ Erreur sauvegarde redirection OAuth: %v", err)
		}
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// GET /auth/:provider/callback
func CallbackAuth(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification échouée"})
		return
	}

	email, err := findOrCreateOAuthUser(gothUser)
	if err != nil {
		log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	if redirect := cache.TakeOAuthRedirect(c.Query("state")); redirect != "" {
		c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s#access_token=%s", redirect, token))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// findOrCreateOAuthUser rattache le compte par provider_id, puis par email,
// et le crée sinon. Retourne l'email porté par le token.
func findOrCreateOAuthUser(gothUser goth.User) (string, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return "", err
	}

	// Compte déjà lié à cet email ?
	var userID gocql.UUID
	err = session.Query("SELECT user_id FROM users_by_email WHERE email = ?", gothUser.Email).Scan(&userID)
	if err == nil {
		// Rattache le provider si le compte était local.
		if err := session.Query(
			"UPDATE users SET provider = ?, provider_id = ?, updated_at = ? WHERE user_id = ?",
			gothUser.Provider, gothUser.UserID, time.Now(), userID).Exec(); err != nil {
			log.Printf("⚠️ Erreur rattachement provider: %v", err)
		}
		return gothUser.Email, nil
	}
	if err != gocql.ErrNotFound {
		return "", err
	}

	newID := gocql.TimeUUID()
	applied, err := reserveEmail(gothUser.Email, newID)
	if err != nil {
		return "", err
	}
	if !applied {
		// Course perdue : le compte vient d'être créé par ailleurs.
		return gothUser.Email, nil
	}

	username := gothUser.Name
	if username == "" {
		username = gothUser.Email
	}

	now := time.Now()
	user := models.User{
		ID:         newID,
		Email:      gothUser.Email,
		Username:   username,
		IsActive:   true,
		Provider:   gothUser.Provider,
		ProviderID: gothUser.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := insertUser(user); err != nil {
		// L'email ne doit pas rester réservé sans ligne utilisateur.
		if relErr := releaseEmail(gothUser.Email); relErr != nil {
			log.Printf("⚠️ Erreur libération email %s: %v", gothUser.Email, relErr)
		}
		return "", err
	}

	return gothUser.Email, nil
}

func randomState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
