package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"velvet_back_end/internal/cache"
	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"
	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ================== INSCRIPTION ==================

// Accès au store utilisateurs, remplaçables en test comme la source du
// moniteur de stock.
var (
	reserveEmail = scyllaReserveEmail
	releaseEmail = scyllaReleaseEmail
	insertUser   = scyllaInsertUser
)

// POST /register
func Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	userID := gocql.TimeUUID()

	// users_by_email porte l'unicité : si l'insertion conditionnelle ne
	// s'applique pas, l'email est déjà pris.
	applied, err := reserveEmail(input.Email, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if !applied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:        userID,
		Email:     input.Email,
		Username:  input.Username,
		Password:  hashedPassword,
		IsActive:  true,
		Provider:  "local",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := insertUser(user); err != nil {
		// Sans la ligne users, la réservation d'email rendrait l'adresse
		// inutilisable : on la libère pour permettre une nouvelle tentative.
		if relErr := releaseEmail(input.Email); relErr != nil {
			log.Printf("⚠️ Erreur libération email %s: %v", input.Email, relErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID.String(),
		"email":     user.Email,
		"username":  user.Username,
		"is_active": user.IsActive,
	})
}

func scyllaReserveEmail(email string, userID gocql.UUID) (bool, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return false, err
	}

	var existingEmail string
	var existingID gocql.UUID
	return session.Query(
		"INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS",
		email, userID).ScanCAS(&existingEmail, &existingID)
}

func scyllaReleaseEmail(email string) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM users_by_email WHERE email = ?", email).Exec()
}

func scyllaInsertUser(user models.User) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`
		INSERT INTO users (user_id, email, username, password, is_active, provider, provider_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.Password, user.IsActive,
		user.Provider, user.ProviderID, user.CreatedAt, user.UpdatedAt).Exec()
}

// ================== CONNEXION ==================

// POST /token — form-encoded, username porte l'email.
func Login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username et password requis"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var hashedPassword string
	if err := session.Query("SELECT password FROM users WHERE user_id = ?", userID).Scan(&hashedPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	valid, err := utils.VerifyPassword(password, hashedPassword)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	// Une ligne d'activité par connexion réussie.
	if err := session.Query(
		"INSERT INTO login_activity_by_user (user_id, activity_id, ts) VALUES (?, ?, ?)",
		userID, gocql.TimeUUID(), time.Now()).Exec(); err != nil {
		log.Printf("⚠️ Erreur enregistrement activité de connexion: %v", err)
	}

	token, err := utils.GenerateToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// ================== RÉINITIALISATION DE MOT DE PASSE ==================

// POST /reset-password — le token est renvoyé dans la réponse, l'envoi par
// email n'est pas couvert ici.
func ResetPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", input.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	resetToken := generateResetToken()
	if err := cache.StoreResetToken(resetToken, userID.String()); err != nil {
		log.Printf("❌ Erreur sauvegarde token reset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du lien"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset link has been sent to your email",
		"token":   resetToken,
	})
}

// POST /change-password — consomme le token (usage unique).
func ChangePassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := cache.ConsumeResetToken(input.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide ou expiré"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la réinitialisation"})
		return
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?",
		hashedPassword, time.Now(), gocql.UUID(uid)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been successfully changed"})
}

// ================== ACTIVITÉ & PROFIL ==================

// GET /login-activity — limité à l'utilisateur courant.
func GetLoginActivity(c *gin.Context) {
	userID := c.GetString("user_id")

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(
		"SELECT activity_id, ts FROM login_activity_by_user WHERE user_id = ?",
		gocql.UUID(uid)).Iter()

	activities := []models.LoginActivity{}
	var activityID gocql.UUID
	var ts time.Time
	for iter.Scan(&activityID, &ts) {
		activities = append(activities, models.LoginActivity{
			ID:        activityID,
			UserID:    gocql.UUID(uid),
			Timestamp: ts,
		})
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture activité"})
		return
	}

	c.JSON(http.StatusOK, activities)
}

// GET /me
func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var username string
	var isActive bool
	if err := session.Query("SELECT username, is_active FROM users WHERE user_id = ?",
		gocql.UUID(uid)).Scan(&username, &isActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"email":     email,
		"username":  username,
		"is_active": isActive,
	})
}

// ================== UTILITAIRES ==================

func generateResetToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
