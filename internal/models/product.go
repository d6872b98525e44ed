package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Product est partitionné par nom dans ScyllaDB : l'unicité du nom est
// garantie par la clé de partition + INSERT IF NOT EXISTS.
type Product struct {
	ID               gocql.UUID  `json:"id" db:"product_id"`
	Name             string      `json:"name" db:"name"`
	StockLevel       int         `json:"stock_level" db:"stock_level"`
	ReorderThreshold int         `json:"reorder_threshold" db:"reorder_threshold"`
	SupplierID       *gocql.UUID `json:"supplier_id,omitempty" db:"supplier_id"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

type Supplier struct {
	ID   gocql.UUID `json:"id" db:"supplier_id"`
	Name string     `json:"name" db:"name"`
}

// Batch : réception fournisseur alimentant le stock initial (seed uniquement).
type Batch struct {
	ID          gocql.UUID `json:"id" db:"batch_id"`
	SupplierID  gocql.UUID `json:"supplier_id" db:"supplier_id"`
	ProductName string     `json:"product_name" db:"product_name"`
	Quantity    int        `json:"quantity" db:"quantity"`
	ReceivedAt  time.Time  `json:"received_at" db:"received_at"`
}

// StockEvent est publié sur Redis à chaque mouvement et relayé en websocket.
type StockEvent struct {
	Product    string `json:"product"`
	StockLevel int    `json:"stock_level"`
	Kind       string `json:"kind"` // "upsert" ou "purchase"
}
