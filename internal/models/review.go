package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Review struct {
	ID         gocql.UUID `json:"id" db:"review_id"`
	ProductID  gocql.UUID `json:"product_id" db:"product_id"`
	UserID     gocql.UUID `json:"user_id" db:"user_id"`
	Rating     int        `json:"rating" db:"rating"` // 1-5
	ReviewText string     `json:"review_text" db:"review_text"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
