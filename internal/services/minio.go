package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"velvet_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

var bucket string

// InitPhotoStore fixe le bucket des photos (appelé au démarrage).
func InitPhotoStore(bucketName string) {
	bucket = bucketName
}

// UploadPhoto écrit l'objet sous son nom de fichier. Une collision de nom
// écrase l'objet existant, comme le ferait un répertoire local.
func UploadPhoto(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}

	_, err := database.MinIO.PutObject(ctx, bucket, filename, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// PresignedPhotoURL génère une URL signée à durée limitée pour un objet.
func PresignedPhotoURL(ctx context.Context, filename string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	presigned, err := database.MinIO.PresignedGetObject(ctx, bucket, filename, duration, nil)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
