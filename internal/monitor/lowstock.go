package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"
)

// LowStockSource retourne les produits sous leur seuil de réapprovisionnement.
type LowStockSource func() ([]models.Product, error)

// Mailer est l'envoi d'alerte, découplé du SMTP réel pour les tests.
type Mailer interface {
	Send(subject, body string) error
}

// Monitor scanne périodiquement le stock et envoie un email d'alerte
// listant les produits sous leur seuil.
type Monitor struct {
	Source   LowStockSource
	Mailer   Mailer
	Interval time.Duration
}

func New(source LowStockSource, mailer Mailer, interval time.Duration) *Monitor {
	return &Monitor{Source: source, Mailer: mailer, Interval: interval}
}

// Run exécute un premier scan immédiat puis un scan par intervalle,
// jusqu'à annulation du contexte. Les erreurs sont loguées, jamais fatales.
func (m *Monitor) Run(ctx context.Context) {
	log.Printf("📊 Moniteur de stock démarré (intervalle %s)", m.Interval)

	m.scan()

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.scan()
		case <-ctx.Done():
			log.Println("📊 Moniteur de stock arrêté")
			return
		}
	}
}

func (m *Monitor) scan() {
	products, err := m.Source()
	if err != nil {
		log.Printf("❌ Erreur scan stock: %v", err)
		return
	}
	if len(products) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("The following products are low in stock:\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %d (Threshold: %d)\n", p.Name, p.StockLevel, p.ReorderThreshold)
	}

	if err := m.Mailer.Send("Low Stock Alert 🚨", b.String()); err != nil {
		log.Printf("❌ Erreur envoi alerte stock: %v", err)
		return
	}
	log.Printf("📤 Alerte stock envoyée (%d produit(s))", len(products))
}

// ScyllaLowStock lit tous les produits et filtre côté application :
// CQL ne sait pas comparer deux colonnes entre elles.
func ScyllaLowStock() ([]models.Product, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT name, stock_level, reorder_threshold FROM products").Iter()

	low := []models.Product{}
	var p models.Product
	for iter.Scan(&p.Name, &p.StockLevel, &p.ReorderThreshold) {
		if p.StockLevel < p.ReorderThreshold {
			low = append(low, p)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return low, nil
}
