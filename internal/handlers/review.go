package handlers

import (
	"net/http"
	"strings"
	"time"

	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// POST /reviews — la validation du contenu passe AVANT la vérification
// d'existence du produit.
func CreateReview(c *gin.Context) {
	var input struct {
		ProductID  string `json:"product_id" binding:"required"`
		Rating     int    `json:"rating"`
		ReviewText string `json:"review_text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	if strings.TrimSpace(input.ReviewText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Review text cannot be empty"})
		return
	}

	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetInventorySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var productName string
	if err := session.Query("SELECT name FROM products_by_id WHERE product_id = ?",
		gocql.UUID(productID)).Scan(&productName); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	review := models.Review{
		ID:         gocql.TimeUUID(),
		ProductID:  gocql.UUID(productID),
		UserID:     gocql.UUID(userID),
		Rating:     input.Rating,
		ReviewText: strings.TrimSpace(input.ReviewText),
		CreatedAt:  time.Now(),
	}

	if err := session.Query(`
		INSERT INTO reviews_by_product (product_id, review_id, user_id, rating, review_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ProductID, review.ID, review.UserID, review.Rating,
		review.ReviewText, review.CreatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur écriture avis"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// GET /products/:name/reviews — liste + note moyenne.
func GetProductReviews(c *gin.Context) {
	session, err := database.GetInventorySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var productID gocql.UUID
	if err := session.Query("SELECT product_id FROM products WHERE name = ?",
		c.Param("name")).Scan(&productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	iter := session.Query(`
		SELECT review_id, user_id, rating, review_text, created_at
		FROM reviews_by_product WHERE product_id = ?`,
		productID).Iter()

	reviews := []models.Review{}
	total := 0
	var r models.Review
	for iter.Scan(&r.ID, &r.UserID, &r.Rating, &r.ReviewText, &r.CreatedAt) {
		r.ProductID = productID
		reviews = append(reviews, r)
		total += r.Rating
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	average := 0.0
	if len(reviews) > 0 {
		average = float64(total) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"average_rating": average,
		"count":          len(reviews),
	})
}
