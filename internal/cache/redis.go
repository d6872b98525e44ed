package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"velvet_back_end/internal/database"
	"velvet_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

const (
	ResetTokenTTL   = 1 * time.Hour
	ProductCacheTTL = 10 * time.Minute

	// Canal pub/sub des mouvements de stock, relayé en websocket.
	StockEventsChannel = "stock:events"
)

// --- Tokens de réinitialisation (usage unique) ---

// StoreResetToken associe un token de reset à un utilisateur pendant 1 heure.
func StoreResetToken(token, userID string) error {
	key := fmt.Sprintf("reset_token:%s", token)
	return database.Redis.Set(ctx, key, userID, ResetTokenTTL).Err()
}

// ConsumeResetToken retourne l'user_id associé au token et le supprime.
// Le DEL garantit l'usage unique même si deux requêtes arrivent en même temps.
func ConsumeResetToken(token string) (string, error) {
	key := fmt.Sprintf("reset_token:%s", token)
	userID, err := database.Redis.GetDel(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return userID, nil
}

// --- Cache de la liste produits ---

const productListKey = "products:all"

func GetProductList() ([]models.Product, bool) {
	data, err := database.Redis.Get(ctx, productListKey).Result()
	if err != nil || data == "" {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false
	}
	return products, true
}

func SetProductList(products []models.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, productListKey, data, ProductCacheTTL)
}

// InvalidateProductList est appelé après chaque écriture produit.
func InvalidateProductList() {
	database.Redis.Del(ctx, productListKey)
}

// --- Événements de stock ---

// PublishStockEvent pousse un mouvement de stock sur le canal pub/sub.
// Best effort : une erreur est loguée, jamais remontée au handler.
func PublishStockEvent(event models.StockEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := database.Redis.Publish(ctx, StockEventsChannel, data).Err(); err != nil {
		log.Printf("⚠️ Erreur publication événement stock: %v", err)
	}
}

// SubscribeStockEvents ouvre un abonnement au canal des mouvements de stock.
func SubscribeStockEvents(ctx context.Context) *redis.PubSub {
	return database.Redis.Subscribe(ctx, StockEventsChannel)
}

// --- État OAuth ---

// StoreOAuthRedirect mémorise l'URL de redirection liée à un state OAuth.
func StoreOAuthRedirect(state, redirectURL string) error {
	return database.Redis.Set(ctx, "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
}

// TakeOAuthRedirect récupère puis supprime l'URL liée au state.
func TakeOAuthRedirect(state string) string {
	redirectURL, _ := database.Redis.GetDel(ctx, "oauth_redirect:"+state).Result()
	return redirectURL
}
