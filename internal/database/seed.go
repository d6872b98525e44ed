package database

import (
	"log"
	"time"

	"velvet_back_end/internal/models"

	"github.com/gocql/gocql"
)

var seedSuppliers = []string{
	"Valpo Textile Co",
	"Pacific Print Works",
	"Andes Promo Supplies",
}

type seedProduct struct {
	name      string
	stock     int
	threshold int
	supplier  string
}

var seedProducts = []seedProduct{
	{"T-Shirt", 120, 25, "Valpo Textile Co"},
	{"Hoodie", 60, 15, "Valpo Textile Co"},
	{"Mug", 200, 40, "Pacific Print Works"},
	{"Poster", 150, 30, "Pacific Print Works"},
	{"Sticker Pack", 500, 100, "Andes Promo Supplies"},
	{"Tote Bag", 80, 20, "Andes Promo Supplies"},
}

// Seed insère les fournisseurs, produits et lots initiaux. Les insertions
// utilisent IF NOT EXISTS : relancer le seed n'écrase jamais l'existant.
func Seed() {
	session, err := GetInventorySession()
	if err != nil {
		log.Printf("⚠️ Seed impossible: %v", err)
		return
	}

	now := time.Now()
	supplierIDs := make(map[string]gocql.UUID)

	for _, name := range seedSuppliers {
		// Le nom sert de clé : on retrouve l'ID existant avant d'en créer un.
		var existing gocql.UUID
		if err := session.Query("SELECT supplier_id FROM suppliers_by_name WHERE name = ?", name).Scan(&existing); err == nil {
			supplierIDs[name] = existing
			continue
		}

		id := gocql.TimeUUID()
		applied, err := session.Query(
			"INSERT INTO suppliers_by_name (name, supplier_id) VALUES (?, ?) IF NOT EXISTS",
			name, id).ScanCAS(&name, &existing)
		if err != nil {
			log.Printf("⚠️ Seed fournisseur %s: %v", name, err)
			continue
		}
		if !applied {
			supplierIDs[name] = existing
			continue
		}
		if err := session.Query(
			"INSERT INTO suppliers (supplier_id, name) VALUES (?, ?)", id, name).Exec(); err != nil {
			log.Printf("⚠️ Seed fournisseur %s: %v", name, err)
			continue
		}
		supplierIDs[name] = id
	}

	for _, p := range seedProducts {
		supplierID, ok := supplierIDs[p.supplier]
		if !ok {
			continue
		}

		product := models.Product{
			ID:               gocql.TimeUUID(),
			Name:             p.name,
			StockLevel:       p.stock,
			ReorderThreshold: p.threshold,
			SupplierID:       &supplierID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		applied, err := session.Query(`
			INSERT INTO products (name, product_id, stock_level, reorder_threshold, supplier_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
			product.Name, product.ID, product.StockLevel, product.ReorderThreshold,
			product.SupplierID, product.CreatedAt, product.UpdatedAt).
			MapScanCAS(map[string]interface{}{})
		if err != nil {
			log.Printf("⚠️ Seed produit %s: %v", p.name, err)
			continue
		}
		if !applied {
			continue
		}

		if err := session.Query(
			"INSERT INTO products_by_id (product_id, name) VALUES (?, ?)",
			product.ID, product.Name).Exec(); err != nil {
			log.Printf("⚠️ Seed index produit %s: %v", p.name, err)
		}

		// Un lot fournisseur par produit seedé : le stock initial vient de là.
		batch := models.Batch{
			ID:          gocql.TimeUUID(),
			SupplierID:  supplierID,
			ProductName: product.Name,
			Quantity:    product.StockLevel,
			ReceivedAt:  now,
		}
		if err := session.Query(`
			INSERT INTO batches (batch_id, supplier_id, product_name, quantity, received_at)
			VALUES (?, ?, ?, ?, ?)`,
			batch.ID, batch.SupplierID, batch.ProductName, batch.Quantity, batch.ReceivedAt).Exec(); err != nil {
			log.Printf("⚠️ Seed lot %s: %v", p.name, err)
		}
	}

	log.Println("🌱 Données initiales vérifiées (fournisseurs, produits, lots)")
}
