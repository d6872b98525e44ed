package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"velvet_back_end/internal/config"
	"velvet_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// fakeStore remplace les indirections Scylla/MinIO/Redis du package par de
// la mémoire, sur le modèle du faux mailer du moniteur de stock.
type fakeStore struct {
	users    map[string]gocql.UUID
	products map[string]models.Product
	photos   map[gocql.UUID]models.Photo
	objects  map[string][]byte

	insertUserErr   error
	forceOutOfStock map[string]bool
	invalidations   int
}

func stubStore(t *testing.T) *fakeStore {
	t.Helper()

	f := &fakeStore{
		users:           map[string]gocql.UUID{},
		products:        map[string]models.Product{},
		photos:          map[gocql.UUID]models.Photo{},
		objects:         map[string][]byte{},
		forceOutOfStock: map[string]bool{},
	}

	origReserve, origRelease, origInsert := reserveEmail, releaseEmail, insertUser
	origFetch, origCreate, origAdd, origDec := fetchProduct, createProduct, addStock, decrementStock
	origInv, origPub := invalidateProducts, publishStock
	origPut, origSave, origLoad, origApprove := putObject, savePhoto, loadPhotos, approvePhotoRow
	origCfg := cfg
	t.Cleanup(func() {
		reserveEmail, releaseEmail, insertUser = origReserve, origRelease, origInsert
		fetchProduct, createProduct, addStock, decrementStock = origFetch, origCreate, origAdd, origDec
		invalidateProducts, publishStock = origInv, origPub
		putObject, savePhoto, loadPhotos, approvePhotoRow = origPut, origSave, origLoad, origApprove
		cfg = origCfg
	})

	cfg = &config.Config{PublicBaseURL: "http://localhost:8000"}

	reserveEmail = func(email string, userID gocql.UUID) (bool, error) {
		if _, taken := f.users[email]; taken {
			return false, nil
		}
		f.users[email] = userID
		return true, nil
	}
	releaseEmail = func(email string) error {
		delete(f.users, email)
		return nil
	}
	insertUser = func(models.User) error {
		return f.insertUserErr
	}

	fetchProduct = func(name string) (models.Product, bool, error) {
		p, ok := f.products[name]
		return p, ok, nil
	}
	createProduct = func(p models.Product) (bool, error) {
		if _, exists := f.products[p.Name]; exists {
			return false, nil
		}
		f.products[p.Name] = p
		return true, nil
	}
	addStock = func(name string, delta int, threshold *int, supplierID *gocql.UUID) error {
		p := f.products[name]
		p.StockLevel += delta
		if threshold != nil {
			p.ReorderThreshold = *threshold
		}
		if supplierID != nil {
			p.SupplierID = supplierID
		}
		f.products[name] = p
		return nil
	}
	decrementStock = func(name string, qty int) (int, error) {
		p := f.products[name]
		if f.forceOutOfStock[name] || p.StockLevel < qty {
			return 0, fmt.Errorf("%w: %s", errInsufficientStock, name)
		}
		p.StockLevel -= qty
		f.products[name] = p
		return p.StockLevel, nil
	}

	invalidateProducts = func() { f.invalidations++ }
	publishStock = func(models.StockEvent) {}

	putObject = func(_ context.Context, filename string, reader io.Reader, _ int64, _ string) error {
		data, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		f.objects[filename] = data
		return nil
	}
	savePhoto = func(p models.Photo) error {
		f.photos[p.ID] = p
		return nil
	}
	loadPhotos = func() ([]models.Photo, error) {
		photos := []models.Photo{}
		for _, p := range f.photos {
			photos = append(photos, p)
		}
		return photos, nil
	}
	approvePhotoRow = func(photoID gocql.UUID) (bool, error) {
		p, ok := f.photos[photoID]
		if !ok {
			return false, nil
		}
		p.Approved = true
		f.photos[photoID] = p
		return true, nil
	}

	return f
}

// ================== INSCRIPTION ==================

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	stubStore(t)
	r := gin.New()
	r.POST("/register", Register)

	body := `{"email": "alice@example.com", "username": "alice", "password": "pw"}`
	if w := performJSON(r, http.MethodPost, "/register", body); w.Code != http.StatusOK {
		t.Fatalf("première inscription: code = %d, attendu 200", w.Code)
	}
	if w := performJSON(r, http.MethodPost, "/register", body); w.Code != http.StatusBadRequest {
		t.Errorf("inscription en doublon: code = %d, attendu 400", w.Code)
	}
}

func TestRegisterReleasesEmailOnUserWriteFailure(t *testing.T) {
	f := stubStore(t)
	r := gin.New()
	r.POST("/register", Register)

	body := `{"email": "bob@example.com", "username": "bob", "password": "pw"}`

	f.insertUserErr = errors.New("scylla down")
	if w := performJSON(r, http.MethodPost, "/register", body); w.Code != http.StatusInternalServerError {
		t.Fatalf("écriture en échec: code = %d, attendu 500", w.Code)
	}
	if _, taken := f.users["bob@example.com"]; taken {
		t.Fatal("l'email reste réservé alors que la ligne utilisateur a échoué")
	}

	// L'adresse redevient utilisable.
	f.insertUserErr = nil
	if w := performJSON(r, http.MethodPost, "/register", body); w.Code != http.StatusOK {
		t.Errorf("nouvelle tentative: code = %d, attendu 200", w.Code)
	}
}

// ================== PRODUITS & ACHATS ==================

func productStock(t *testing.T, r *gin.Engine, name string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/products/"+name, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /products/%s: code = %d", name, w.Code)
	}
	var p models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("décodage produit: %v", err)
	}
	return p.StockLevel
}

func TestUpsertAddsToExistingStock(t *testing.T) {
	stubStore(t)
	r := gin.New()
	r.POST("/products", UpsertProduct)
	r.GET("/products/:name", GetProduct)

	if w := performJSON(r, http.MethodPost, "/products",
		`{"name": "Widget", "stock_level": 10, "reorder_threshold": 5}`); w.Code != http.StatusOK {
		t.Fatalf("création: code = %d", w.Code)
	}

	w := performJSON(r, http.MethodPost, "/products", `{"name": "Widget", "stock_level": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second upsert: code = %d", w.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("décodage réponse: %v", err)
	}
	if resp.Message != "Product quantity updated successfully" {
		t.Errorf("message = %q", resp.Message)
	}

	if stock := productStock(t, r, "Widget"); stock != 15 {
		t.Errorf("stock après upsert additif = %d, attendu 15", stock)
	}
}

func TestPurchaseDecrementsAndRejectsOverdraw(t *testing.T) {
	stubStore(t)
	r := gin.New()
	r.POST("/products", UpsertProduct)
	r.GET("/products/:name", GetProduct)
	r.POST("/purchase", Purchase)

	if w := performJSON(r, http.MethodPost, "/products",
		`{"name": "Widget", "stock_level": 10, "reorder_threshold": 5}`); w.Code != http.StatusOK {
		t.Fatalf("création: code = %d", w.Code)
	}

	if w := performJSON(r, http.MethodPost, "/purchase",
		`[{"product_id": "Widget", "quantity": 3}]`); w.Code != http.StatusOK {
		t.Fatalf("achat valide: code = %d", w.Code)
	}
	if stock := productStock(t, r, "Widget"); stock != 7 {
		t.Fatalf("stock après achat = %d, attendu 7", stock)
	}

	if w := performJSON(r, http.MethodPost, "/purchase",
		`[{"product_id": "Widget", "quantity": 20}]`); w.Code != http.StatusBadRequest {
		t.Errorf("achat au-delà du stock: code = %d, attendu 400", w.Code)
	}
	if stock := productStock(t, r, "Widget"); stock != 7 {
		t.Errorf("stock après refus = %d, il ne doit pas bouger", stock)
	}
}

func TestPurchaseLostRaceReturns400AndInvalidatesCache(t *testing.T) {
	f := stubStore(t)
	r := gin.New()
	r.POST("/purchase", Purchase)

	f.products["A"] = models.Product{Name: "A", StockLevel: 5}
	f.products["B"] = models.Product{Name: "B", StockLevel: 5}
	// B passe la validation mais son stock part entre les deux passes.
	f.forceOutOfStock["B"] = true

	w := performJSON(r, http.MethodPost, "/purchase",
		`[{"product_id": "A", "quantity": 2}, {"product_id": "B", "quantity": 2}]`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("course perdue: code = %d, attendu 400", w.Code)
	}
	if f.products["A"].StockLevel != 3 {
		t.Errorf("stock A = %d, la ligne déjà débitée doit le rester", f.products["A"].StockLevel)
	}
	if f.invalidations == 0 {
		t.Error("le cache produits n'a pas été invalidé après un débit partiel")
	}
}

// ================== PHOTOS ==================

func uploadPhotoRequest(t *testing.T, filename, category string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("fake-image-bytes"))
	mw.WriteField("category", category)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/photos/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPhotoModerationFlow(t *testing.T) {
	f := stubStore(t)
	r := gin.New()
	authed := func(c *gin.Context) { c.Set("user_id", uuid.NewString()) }
	r.POST("/photos/upload", authed, UploadPhoto)
	r.GET("/photos", GetPhotos)
	r.GET("/photos/categories", GetPhotoCategories)
	r.PUT("/photos/:id/approve", ApprovePhoto)

	req := uploadPhotoRequest(t, "shelf.png", "rayonnage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: code = %d", w.Code)
	}
	var upResp struct {
		PhotoID string `json:"photo_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &upResp); err != nil {
		t.Fatalf("décodage réponse upload: %v", err)
	}

	// L'objet est adressé par son nom de fichier d'origine.
	if _, ok := f.objects["shelf.png"]; !ok {
		t.Error("l'objet n'est pas stocké sous son nom de fichier")
	}

	// Non approuvée par défaut, donc absente de la liste publique...
	photoID, err := uuid.Parse(upResp.PhotoID)
	if err != nil {
		t.Fatalf("photo_id invalide: %v", err)
	}
	if f.photos[gocql.UUID(photoID)].Approved {
		t.Error("une photo fraîchement envoyée ne doit pas être approuvée")
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/photos", nil))
	var visible []models.Photo
	if err := json.Unmarshal(w.Body.Bytes(), &visible); err != nil {
		t.Fatalf("décodage /photos: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("%d photo(s) visibles avant approbation, attendu 0", len(visible))
	}

	// ...mais sa catégorie apparaît déjà, approbation ou pas.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/photos/categories", nil))
	var categories []string
	if err := json.Unmarshal(w.Body.Bytes(), &categories); err != nil {
		t.Fatalf("décodage /photos/categories: %v", err)
	}
	found := false
	for _, cat := range categories {
		if cat == "rayonnage" {
			found = true
		}
	}
	if !found {
		t.Errorf("catégorie d'une photo non approuvée absente de %v", categories)
	}

	// Après approbation la photo est servie.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/photos/"+upResp.PhotoID+"/approve", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("approbation: code = %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/photos", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &visible); err != nil {
		t.Fatalf("décodage /photos: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("%d photo(s) visibles après approbation, attendu 1", len(visible))
	}
	if visible[0].URL != "http://localhost:8000/static/shelf.png" {
		t.Errorf("URL = %q", visible[0].URL)
	}
}
