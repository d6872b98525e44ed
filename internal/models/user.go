package models

import (
	"time"

	"github.com/gocql/gocql"
)

type User struct {
	ID         gocql.UUID `json:"id" db:"user_id"`
	Email      string     `json:"email" db:"email"`
	Username   string     `json:"username" db:"username"`
	Password   string     `json:"-" db:"password"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	Provider   string     `json:"provider,omitempty" db:"provider"`
	ProviderID string     `json:"-" db:"provider_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

type LoginActivity struct {
	ID        gocql.UUID `json:"id" db:"activity_id"`
	UserID    gocql.UUID `json:"user_id" db:"user_id"`
	Timestamp time.Time  `json:"timestamp" db:"ts"`
}
