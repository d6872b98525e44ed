package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration du service, construite une seule
// fois au démarrage dans main. Aucun secret n'est relu depuis
// l'environnement ailleurs dans le code.
type Config struct {
	Port          string
	PublicBaseURL string // base des URLs publiques (photos, QR), ex: http://localhost:8000

	JWTSecret   []byte
	TokenExpiry time.Duration

	// ScyllaDB
	ScyllaHosts       []string
	UsersKeyspace     string
	UsersRole         string
	UsersPassword     string
	InventoryKeyspace string
	InventoryRole     string
	InventoryPassword string

	// Redis
	RedisHost     string
	RedisPassword string

	// Elasticsearch
	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	// MinIO
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Relais SMTP (STARTTLS) pour les alertes de stock
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	AlertRecipient string

	LowStockInterval time.Duration

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string

	SeedOnStart bool
}

// Load charge le .env puis construit la Config.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := &Config{
		Port:          getenv("PORT", "8000"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8000"),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		TokenExpiry: 30 * time.Minute,

		ScyllaHosts:       strings.Split(getenv("SCYLLA_HOSTS", "127.0.0.1"), ","),
		UsersKeyspace:     getenv("SCYLLA_KS_USERS_KEYSPACE", "ks_users"),
		UsersRole:         os.Getenv("SCYLLA_KS_USERS_ROLE"),
		UsersPassword:     os.Getenv("SCYLLA_KS_USERS_PASSWORD"),
		InventoryKeyspace: getenv("SCYLLA_KS_INVENTORY_KEYSPACE", "ks_inventory"),
		InventoryRole:     os.Getenv("SCYLLA_KS_INVENTORY_ROLE"),
		InventoryPassword: os.Getenv("SCYLLA_KS_INVENTORY_PASSWORD"),

		RedisHost:     getenv("REDIS_HOST", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      getenv("ELASTIC_URL", "http://127.0.0.1:9200"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinIOEndpoint:  getenv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getenv("MINIO_BUCKET", "velvet-photos"),
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getenvInt("SMTP_PORT", 587),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
		AlertRecipient: os.Getenv("ALERT_RECIPIENT"),

		LowStockInterval: 3 * time.Hour,

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),

		SeedOnStart: os.Getenv("SEED_ON_START") == "true",
	}

	if len(cfg.JWTSecret) == 0 {
		log.Fatal("❌ JWT_SECRET manquant dans .env")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d utilisée", key, v, fallback)
		return fallback
	}
	return n
}
