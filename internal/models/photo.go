package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Photo ne stocke que la clé objet MinIO ; l'URL publique est reconstruite
// à partir de PUBLIC_BASE_URL au moment de la réponse.
type Photo struct {
	ID         gocql.UUID `json:"id" db:"photo_id"`
	ObjectKey  string     `json:"-" db:"object_key"`
	URL        string     `json:"url"`
	Category   string     `json:"category" db:"category"`
	UploadedBy gocql.UUID `json:"uploaded_by" db:"uploaded_by"`
	Approved   bool       `json:"approved" db:"approved"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
