package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	"friendlyeats/internal/docstore"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	DocStoreBackend string
	DBHost          string
	DBPort          string
	DBName          string
	DBUser          string
	DBPassword      string
	RedisHost       string
	RedisPort       string
	KafkaBroker     string
	ChangesTopic    string
	ConsumerGroup   string
	HTTPAddr        string
	TxMaxAttempts   int
	GCPProject      string
	ReviewBaseURL   string
	StatsTTL        time.Duration
	RateSvcURL      string
	AnalyticsSvcURL string
}

// Load reads the process environment, after merging an optional .env file
// from the working directory. Variables already set in the environment win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	return Config{
		DocStoreBackend: getEnv("DOCSTORE_BACKEND", BackendPostgres),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBName:          os.Getenv("DB_NAME"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		ChangesTopic:    getEnv("CHANGES_TOPIC", "document-changes"),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", "agg-svc-consumer"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		TxMaxAttempts:   getEnvInt("TX_MAX_ATTEMPTS", docstore.DefaultMaxAttempts),
		GCPProject:      os.Getenv("GCP_PROJECT"),
		ReviewBaseURL:   getEnv("REVIEW_BASE_URL", "http://localhost:8080"),
		StatsTTL:        getEnvDuration("STATS_TTL", 24*time.Hour),
		RateSvcURL:      getEnv("RATE_SVC_URL", "http://localhost:8082"),
		AnalyticsSvcURL: getEnv("ANALYTICS_SVC_URL", "http://localhost:8083"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Error parsing %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Error parsing %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func MustInitPostgres(cfg Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

// MustInitFirestore honours FIRESTORE_EMULATOR_HOST through the client
// library itself.
func MustInitFirestore(cfg Config) *firestore.Client {
	if cfg.GCPProject == "" {
		log.Fatal("GCP_PROJECT is required for the firestore backend")
	}
	client, err := firestore.NewClient(context.Background(), cfg.GCPProject)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	return client
}

// MustInitDocStore opens the configured backend. The returned closer
// releases the underlying connection. Firestore ignores sink since the
// platform delivers its change events.
func MustInitDocStore(cfg Config, sink docstore.ChangeSink) (docstore.Store, func() error) {
	opts := docstore.Options{MaxAttempts: cfg.TxMaxAttempts, Sink: sink}

	switch cfg.DocStoreBackend {
	case BackendFirestore:
		client := MustInitFirestore(cfg)
		return docstore.NewFirestoreStore(client, opts), client.Close
	case BackendPostgres:
		db := MustInitPostgres(cfg)
		store := docstore.NewPostgresStore(db, opts)
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatal("Failed to create documents table:", err)
		}
		return store, db.Close
	default:
		log.Fatalf("Unknown DOCSTORE_BACKEND %q", cfg.DocStoreBackend)
		return nil, nil
	}
}

func NewKafkaReader(cfg Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(cfg Config, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}
