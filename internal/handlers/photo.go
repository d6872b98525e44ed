package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"
	"velvet_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Accès au store photos et au bucket, remplaçables en test comme la source
// du moniteur de stock.
var (
	putObject       = services.UploadPhoto
	savePhoto       = scyllaSavePhoto
	loadPhotos      = scyllaLoadPhotos
	approvePhotoRow = scyllaApprovePhoto
)

// ================== UPLOAD ==================

// POST /photos/upload — multipart : champ "file" + champ "category".
// La photo arrive non approuvée et n'est pas servie tant qu'un modérateur
// ne l'a pas validée.
func UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}
	category := c.PostForm("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie manquante"})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fichier"})
		return
	}
	defer file.Close()

	// L'objet est adressé par son nom de fichier : renvoyer le même nom
	// écrase la version précédente. Base() neutralise tout chemin glissé
	// dans le nom.
	objectKey := filepath.Base(fileHeader.Filename)

	contentType := fileHeader.Header.Get("Content-Type")
	if err := putObject(c.Request.Context(), objectKey, file, fileHeader.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload"})
		return
	}

	photo := models.Photo{
		ID:         gocql.TimeUUID(),
		ObjectKey:  objectKey,
		Category:   category,
		UploadedBy: gocql.UUID(userID),
		Approved:   false,
		CreatedAt:  time.Now(),
	}

	if err := savePhoto(photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur écriture photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Photo uploaded successfully",
		"photo_id": photo.ID.String(),
	})
}

// ================== CONSULTATION ==================

// GET /photos?category=... — uniquement les photos approuvées.
func GetPhotos(c *gin.Context) {
	category := c.Query("category")

	photos, err := listPhotos(func(p models.Photo) bool {
		if !p.Approved {
			return false
		}
		return category == "" || p.Category == category
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture photos"})
		return
	}

	c.JSON(http.StatusOK, photos)
}

// GET /photos/all — vue modération, approuvées ou non.
func GetAllPhotos(c *gin.Context) {
	photos, err := listPhotos(func(models.Photo) bool { return true })
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture photos"})
		return
	}

	c.JSON(http.StatusOK, photos)
}

// GET /photos/categories — catégories distinctes, photos approuvées ou non.
func GetPhotoCategories(c *gin.Context) {
	photos, err := listPhotos(func(models.Photo) bool { return true })
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture photos"})
		return
	}

	seen := map[string]bool{}
	categories := []string{}
	for _, p := range photos {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)

	c.JSON(http.StatusOK, categories)
}

// ================== MODÉRATION ==================

// PUT /photos/:id/approve
func ApprovePhoto(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	found, err := approvePhotoRow(gocql.UUID(photoID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour photo"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo approved"})
}

// ================== SERVICE DES FICHIERS ==================

// GET /static/:filename — redirige vers une URL présignée MinIO.
func StaticPhoto(c *gin.Context) {
	filename := c.Param("filename")

	url, err := services.PresignedPhotoURL(c.Request.Context(), filename, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// ================== ACCÈS SCYLLA ==================

func listPhotos(keep func(models.Photo) bool) ([]models.Photo, error) {
	all, err := loadPhotos()
	if err != nil {
		return nil, err
	}

	photos := []models.Photo{}
	for _, p := range all {
		if keep(p) {
			p.URL = fmt.Sprintf("%s/static/%s", cfg.PublicBaseURL, p.ObjectKey)
			photos = append(photos, p)
		}
	}
	return photos, nil
}

func scyllaSavePhoto(p models.Photo) error {
	session, err := database.GetInventorySession()
	if err != nil {
		return err
	}
	return session.Query(`
		INSERT INTO photos (photo_id, object_key, category, uploaded_by, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ObjectKey, p.Category, p.UploadedBy, p.Approved, p.CreatedAt).Exec()
}

func scyllaLoadPhotos() ([]models.Photo, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`
		SELECT photo_id, object_key, category, uploaded_by, approved, created_at
		FROM photos`).Iter()

	photos := []models.Photo{}
	var p models.Photo
	for iter.Scan(&p.ID, &p.ObjectKey, &p.Category, &p.UploadedBy, &p.Approved, &p.CreatedAt) {
		photos = append(photos, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return photos, nil
}

// scyllaApprovePhoto lit avant d'écrire : un UPDATE seul créerait une
// ligne fantôme pour un id inconnu.
func scyllaApprovePhoto(photoID gocql.UUID) (bool, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return false, err
	}

	var objectKey string
	if err := session.Query("SELECT object_key FROM photos WHERE photo_id = ?",
		photoID).Scan(&objectKey); err != nil {
		if err == gocql.ErrNotFound {
			return false, nil
		}
		return false, err
	}

	if err := session.Query("UPDATE photos SET approved = true WHERE photo_id = ?",
		photoID).Exec(); err != nil {
		return false, err
	}
	return true, nil
}
