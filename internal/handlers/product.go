package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"velvet_back_end/internal/cache"
	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"
	services "velvet_back_end/internal/service"
	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const defaultReorderThreshold = 10

// Nombre de tentatives CAS sur une mise à jour de stock concurrente.
const stockCASRetries = 5

var errInsufficientStock = errors.New("stock insuffisant")

// Accès au store produits et au cache, remplaçables en test comme la
// source du moniteur de stock.
var (
	fetchProduct   = scyllaFetchProduct
	createProduct  = scyllaCreateProduct
	addStock       = scyllaAddStock
	decrementStock = scyllaDecrementStock

	invalidateProducts = cache.InvalidateProductList
	publishStock       = cache.PublishStockEvent
)

// ================== FOURNISSEURS ==================

// GET /suppliers
func GetSuppliers(c *gin.Context) {
	session, err := database.GetInventorySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query("SELECT supplier_id, name FROM suppliers").Iter()
	suppliers := []models.Supplier{}
	var s models.Supplier
	for iter.Scan(&s.ID, &s.Name) {
		suppliers = append(suppliers, s)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fournisseurs"})
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

// ================== PRODUITS ==================

// GET /products — passe par le cache Redis, rechargé depuis Scylla au besoin.
func GetAllProducts(c *gin.Context) {
	if products, ok := cache.GetProductList(); ok {
		c.JSON(http.StatusOK, products)
		return
	}

	session, err := database.GetInventorySession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT product_id, name, stock_level, reorder_threshold, supplier_id, created_at, updated_at
		FROM products`).Iter()

	products := []models.Product{}
	for {
		var p models.Product
		var supplierID gocql.UUID
		if !iter.Scan(&p.ID, &p.Name, &p.StockLevel, &p.ReorderThreshold, &supplierID, &p.CreatedAt, &p.UpdatedAt) {
			break
		}
		if supplierID != (gocql.UUID{}) {
			sid := supplierID
			p.SupplierID = &sid
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	cache.SetProductList(products)
	c.JSON(http.StatusOK, products)
}

// GET /products/:name
func GetProduct(c *gin.Context) {
	p, found, err := fetchProduct(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// POST /products — upsert additif : créé si absent, sinon le stock reçu
// s'AJOUTE au stock existant.
func UpsertProduct(c *gin.Context) {
	var input struct {
		Name             string      `json:"name" binding:"required"`
		StockLevel       int         `json:"stock_level"`
		ReorderThreshold *int        `json:"reorder_threshold"`
		SupplierID       *gocql.UUID `json:"supplier_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.StockLevel < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_level doit être positif"})
		return
	}

	threshold := defaultReorderThreshold
	if input.ReorderThreshold != nil {
		threshold = *input.ReorderThreshold
	}

	now := time.Now()
	product := models.Product{
		ID:               gocql.TimeUUID(),
		Name:             input.Name,
		StockLevel:       input.StockLevel,
		ReorderThreshold: threshold,
		SupplierID:       input.SupplierID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// La partition par nom rend l'insertion conditionnelle suffisante pour
	// décider créé/existant.
	applied, err := createProduct(product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur écriture produit"})
		return
	}

	message := "Product added successfully"
	if !applied {
		message = "Product quantity updated successfully"
		if err := addStock(input.Name, input.StockLevel, input.ReorderThreshold, input.SupplierID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
			return
		}
	}

	p, found, err := fetchProduct(input.Name)
	if err != nil || !found {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	invalidateProducts()
	publishStock(models.StockEvent{
		Product:    p.Name,
		StockLevel: p.StockLevel,
		Kind:       "upsert",
	})
	go services.IndexProduct(p)

	c.JSON(http.StatusOK, gin.H{"message": message, "product": p})
}

// ================== ACHATS ==================

type purchaseItem struct {
	// L'API historique transporte le NOM du produit sous la clé product_id.
	ProductName string `json:"product_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
}

// POST /purchase — valide toutes les lignes avant d'appliquer quoi que ce
// soit, puis décrémente ligne par ligne. Une décrémentation qui échoue
// (course perdue) interrompt l'application : les lignes déjà débitées
// restent débitées.
func Purchase(c *gin.Context) {
	var items []purchaseItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity doit être positif"})
			return
		}
	}

	// Passe de validation.
	for _, item := range items {
		p, found, err := fetchProduct(item.ProductName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product with id %s not found", item.ProductName)})
			return
		}
		if p.StockLevel < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Not enough stock for product %s", item.ProductName)})
			return
		}
	}

	// Passe d'application.
	for _, item := range items {
		newLevel, err := decrementStock(item.ProductName, item.Quantity)
		if err != nil {
			// Les lignes précédentes sont déjà débitées : le cache doit
			// être invalidé même en sortie d'erreur.
			invalidateProducts()
			if errors.Is(err, errInsufficientStock) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Not enough stock for product %s", item.ProductName)})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
			}
			return
		}
		publishStock(models.StockEvent{
			Product:    item.ProductName,
			StockLevel: newLevel,
			Kind:       "purchase",
		})
	}

	invalidateProducts()
	c.JSON(http.StatusOK, gin.H{"message": "Purchase successful"})
}

// ================== RECHERCHE & QR ==================

// GET /products/search?q=...
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GET /products/:name/qr — PNG encodant l'URL publique du produit.
func ProductQR(c *gin.Context) {
	name := c.Param("name")

	_, found, err := fetchProduct(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	productURL := fmt.Sprintf("%s/products/%s", cfg.PublicBaseURL, name)
	png, err := utils.GenerateProductQR(productURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ================== ACCÈS SCYLLA ==================

func scyllaFetchProduct(name string) (models.Product, bool, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return models.Product{}, false, err
	}

	var p models.Product
	var supplierID gocql.UUID
	err = session.Query(`
		SELECT product_id, name, stock_level, reorder_threshold, supplier_id, created_at, updated_at
		FROM products WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.StockLevel, &p.ReorderThreshold, &supplierID, &p.CreatedAt, &p.UpdatedAt)
	if err == gocql.ErrNotFound {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, err
	}
	if supplierID != (gocql.UUID{}) {
		sid := supplierID
		p.SupplierID = &sid
	}
	return p, true, nil
}

// scyllaCreateProduct insère le produit si le nom est libre et tient à jour
// la table de correspondance id → nom.
func scyllaCreateProduct(p models.Product) (bool, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return false, err
	}

	var supplierID gocql.UUID
	if p.SupplierID != nil {
		supplierID = *p.SupplierID
	}

	applied, err := session.Query(`
		INSERT INTO products (name, product_id, stock_level, reorder_threshold, supplier_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		p.Name, p.ID, p.StockLevel, p.ReorderThreshold, supplierID, p.CreatedAt, p.UpdatedAt).
		MapScanCAS(map[string]interface{}{})
	if err != nil || !applied {
		return applied, err
	}

	if err := session.Query(
		"INSERT INTO products_by_id (product_id, name) VALUES (?, ?)",
		p.ID, p.Name).Exec(); err != nil {
		return true, err
	}
	return true, nil
}

// scyllaAddStock ajoute delta au stock courant via une boucle
// compare-and-set, et applique au passage les champs optionnels fournis.
func scyllaAddStock(name string, delta int, threshold *int, supplierID *gocql.UUID) error {
	session, err := database.GetInventorySession()
	if err != nil {
		return err
	}

	for i := 0; i < stockCASRetries; i++ {
		var current int
		if err := session.Query(
			"SELECT stock_level FROM products WHERE name = ?", name).Scan(&current); err != nil {
			return err
		}

		newLevel := current + delta
		query := "UPDATE products SET stock_level = ?, updated_at = ?"
		args := []interface{}{newLevel, time.Now()}
		if threshold != nil {
			query += ", reorder_threshold = ?"
			args = append(args, *threshold)
		}
		if supplierID != nil {
			query += ", supplier_id = ?"
			args = append(args, *supplierID)
		}
		query += " WHERE name = ? IF stock_level = ?"
		args = append(args, name, current)

		var observed int
		applied, err := session.Query(query, args...).ScanCAS(&observed)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("stock contention on %s", name)
}

// scyllaDecrementStock retire qty du stock uniquement si le niveau courant
// le permet, et retourne le nouveau niveau.
func scyllaDecrementStock(name string, qty int) (int, error) {
	session, err := database.GetInventorySession()
	if err != nil {
		return 0, err
	}

	for i := 0; i < stockCASRetries; i++ {
		var current int
		if err := session.Query(
			"SELECT stock_level FROM products WHERE name = ?", name).Scan(&current); err != nil {
			return 0, err
		}
		if current < qty {
			return 0, fmt.Errorf("%w: %s", errInsufficientStock, name)
		}

		newLevel := current - qty
		var observed int
		applied, err := session.Query(
			"UPDATE products SET stock_level = ?, updated_at = ? WHERE name = ? IF stock_level = ?",
			newLevel, time.Now(), name, current).ScanCAS(&observed)
		if err != nil {
			return 0, err
		}
		if applied {
			return newLevel, nil
		}
	}
	return 0, fmt.Errorf("stock contention on %s", name)
}
