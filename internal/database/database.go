package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"velvet_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// --- Clients partagés ---
var (
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	usersKeyspace     string
	inventoryKeyspace string
)

// Connect initialise toutes les connexions à partir de la Config.
func Connect(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := initScylla(cfg); err != nil {
		log.Fatalf("❌ Échec initialisation ScyllaDB: %v", err)
	}

	connectRedis(ctx, cfg)
	connectElastic(cfg)
	connectMinIO(ctx, cfg)

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// SCYLLA DB (multi-keyspaces avec rôles)
// =============================================

func initScylla(cfg *config.Config) error {
	usersKeyspace = cfg.UsersKeyspace
	inventoryKeyspace = cfg.InventoryKeyspace

	Scylla = &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  loadScyllaConfigs(cfg),
	}

	for keyspace := range Scylla.configs {
		if _, err := Scylla.GetSession(keyspace); err != nil {
			return fmt.Errorf("échec initialisation keyspace %s: %v", keyspace, err)
		}
	}

	// Note: les tables sont créées via scripts/scylladb_init.cql.
	return nil
}

func loadScyllaConfigs(cfg *config.Config) map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	timeout := 5 * time.Second
	numConns := 10
	consistency := gocql.Quorum

	configs[cfg.UsersKeyspace] = ScyllaKeyspaceConfig{
		Hosts:       cfg.ScyllaHosts,
		Keyspace:    cfg.UsersKeyspace,
		Username:    cfg.UsersRole,
		Password:    cfg.UsersPassword,
		Timeout:     timeout,
		NumConns:    numConns,
		Consistency: consistency,
	}

	configs[cfg.InventoryKeyspace] = ScyllaKeyspaceConfig{
		Hosts:       cfg.ScyllaHosts,
		Keyspace:    cfg.InventoryKeyspace,
		Username:    cfg.InventoryRole,
		Password:    cfg.InventoryPassword,
		Timeout:     timeout,
		NumConns:    numConns,
		Consistency: consistency,
	}

	return configs
}

func createScyllaCluster(config ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns
	cluster.ReconnectInterval = 1 * time.Second

	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster
}

// GetSession retourne une session pour un keyspace donné.
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists {
		if err := session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return session, nil
		}
		// Session invalide, on la recrée
		session.Close()
	}

	session, err := createScyllaCluster(config).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %v", keyspace, err)
	}

	sm.sessions[keyspace] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s' (rôle: %s)", keyspace, config.Username)

	return session, nil
}

// CloseScylla ferme toutes les sessions ScyllaDB.
func CloseScylla() {
	Scylla.mu.Lock()
	defer Scylla.mu.Unlock()

	for keyspace, session := range Scylla.sessions {
		session.Close()
		log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
	}
}

// GetUsersSession retourne la session du keyspace utilisateurs.
func GetUsersSession() (*gocql.Session, error) {
	return Scylla.GetSession(usersKeyspace)
}

// GetInventorySession retourne la session du keyspace inventaire
// (produits, fournisseurs, lots, avis, photos).
func GetInventorySession() (*gocql.Session, error) {
	return Scylla.GetSession(inventoryKeyspace)
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg *config.Config) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg *config.Config) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		log.Fatal("❌ Erreur création client Elasticsearch:", err)
	}

	res, err := client.Info()
	if err != nil {
		log.Fatal("❌ Erreur connexion Elasticsearch:", err)
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg *config.Config) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		log.Fatal("❌ Erreur connexion MinIO:", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		log.Fatal("❌ Erreur vérification bucket MinIO:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("❌ Erreur création bucket MinIO:", err)
		}
		log.Println("🪣 Bucket créé :", cfg.MinIOBucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.MinIOBucket)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", cfg.MinIOEndpoint)
}
