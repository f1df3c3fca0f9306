package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ScyllaKeyspace regroupe les identifiants d'un keyspace (un rôle par keyspace).
type ScyllaKeyspace struct {
	Name     string
	Role     string
	Password string
}

type Config struct {
	Port               string
	BaseURL            string
	FrontendURL        string
	CORSAllowedOrigins []string

	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string
	CookieSecure  bool

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	ShippingRatesFile string

	// "scylla" (par défaut) ou "memory" pour le développement local.
	StorageBackend string

	ScyllaHosts      []string
	ScyllaSSLEnabled bool
	ScyllaSSLCAPath  string
	ScyllaProducts   ScyllaKeyspace
	ScyllaUsers      ScyllaKeyspace
	ScyllaOrders     ScyllaKeyspace

	RedisHost     string
	RedisPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	ImageURLTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CompanyName string
	CompanyIBAN string
	CompanyBIC  string
}

// Load charge le fichier .env (s'il existe) puis lit la configuration depuis
// l'environnement.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration sans toucher au fichier .env.
func FromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getDuration("JWT_TTL", 24*time.Hour),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(getEnv("CURRENCY", "eur")),

		ShippingRatesFile: os.Getenv("SHIPPING_RATES_FILE"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "scylla")),

		ScyllaHosts:      splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaSSLEnabled: getBool("SCYLLA_SSL_ENABLED", false),
		ScyllaSSLCAPath:  os.Getenv("SCYLLA_SSL_CA_PATH"),
		ScyllaProducts: ScyllaKeyspace{
			Name:     os.Getenv("SCYLLA_KS_PRODUCTS_KEYSPACE"),
			Role:     os.Getenv("SCYLLA_KS_PRODUCTS_ROLE"),
			Password: os.Getenv("SCYLLA_KS_PRODUCTS_PASSWORD"),
		},
		ScyllaUsers: ScyllaKeyspace{
			Name:     os.Getenv("SCYLLA_KS_USERS_KEYSPACE"),
			Role:     os.Getenv("SCYLLA_KS_USERS_ROLE"),
			Password: os.Getenv("SCYLLA_KS_USERS_PASSWORD"),
		},
		ScyllaOrders: ScyllaKeyspace{
			Name:     os.Getenv("SCYLLA_KS_ORDERS_KEYSPACE"),
			Role:     os.Getenv("SCYLLA_KS_ORDERS_ROLE"),
			Password: os.Getenv("SCYLLA_KS_ORDERS_PASSWORD"),
		},

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "products"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "cosmetics-images"),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),
		ImageURLTTL:    getDuration("IMAGE_URL_TTL", time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@localhost"),

		CompanyName: getEnv("COMPANY_NAME", "Cosmetics SRL"),
		CompanyIBAN: os.Getenv("COMPANY_IBAN"),
		CompanyBIC:  os.Getenv("COMPANY_BIC"),
	}
}

// Validate signale toutes les variables obligatoires manquantes en une fois.
func (c *Config) Validate() error {
	var missing []string

	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("JWT_SECRET", c.JWTSecret)
	require("SESSION_SECRET", c.SessionSecret)
	require("STRIPE_SECRET_KEY", c.StripeSecretKey)

	switch c.StorageBackend {
	case "memory":
	case "scylla":
		if len(c.ScyllaHosts) == 0 {
			missing = append(missing, "SCYLLA_HOSTS")
		}
		require("SCYLLA_KS_PRODUCTS_KEYSPACE", c.ScyllaProducts.Name)
		require("SCYLLA_KS_USERS_KEYSPACE", c.ScyllaUsers.Name)
		require("SCYLLA_KS_ORDERS_KEYSPACE", c.ScyllaOrders.Name)
		require("REDIS_HOST", c.RedisHost)
	default:
		return fmt.Errorf("STORAGE_BACKEND inconnu: %q", c.StorageBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("variables d'environnement manquantes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MailEnabled indique si un serveur SMTP est configuré.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
