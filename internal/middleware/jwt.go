package middleware

import (
	"net/http"
	"strings"

	"velvet_back_end/internal/database"
	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// AuthRequired valide le bearer token et résout son sujet (email) vers un
// utilisateur existant. Signature invalide, token expiré ou sujet inconnu :
// 401 dans tous les cas.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			c.Abort()
			return
		}

		email, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide ou expiré"})
			c.Abort()
			return
		}

		session, err := database.GetUsersSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			c.Abort()
			return
		}

		var userID gocql.UUID
		if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(&userID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide ou expiré"})
			c.Abort()
			return
		}

		c.Set("user_id", userID.String())
		c.Set("email", email)
		c.Next()
	}
}
