package main

import (
	"context"
	"log"
	"time"

	"cosmetics_back_end/internal/cache"
	"cosmetics_back_end/internal/config"
	"cosmetics_back_end/internal/database"
	"cosmetics_back_end/internal/handlers/admin"
	pa "cosmetics_back_end/internal/handlers/payement"
	"cosmetics_back_end/internal/handlers/product"
	"cosmetics_back_end/internal/handlers/user"
	"cosmetics_back_end/internal/middleware"
	"cosmetics_back_end/internal/repository"
	"cosmetics_back_end/internal/routes"
	"cosmetics_back_end/internal/services"
	"cosmetics_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// caches regroupe les stores Redis (ou mémoire) utilisés par les handlers.
type caches struct {
	carts     cache.CartStore
	counter   cache.Counter
	blacklist cache.TokenBlacklist
	products  cache.ProductCache
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 🚚 Grille tarifaire
	rates := shipping.DefaultRateTable()
	if cfg.ShippingRatesFile != "" {
		loaded, err := shipping.LoadRateTable(cfg.ShippingRatesFile)
		if err != nil {
			log.Fatalf("❌ Grille tarifaire %s: %v", cfg.ShippingRatesFile, err)
		}
		rates = loaded
		log.Printf("✅ Grille tarifaire chargée depuis %s", cfg.ShippingRatesFile)
	}

	store, stores, cleanup := connectStorage(ctx, cfg)
	defer cleanup()

	// 🔎 Elasticsearch (optionnel)
	esClient, err := database.ConnectElastic(cfg)
	if err != nil {
		log.Printf("⚠️  Elasticsearch indisponible, recherche en base: %v", err)
	}
	var search services.ProductSearch
	if esClient != nil {
		search = services.NewElasticSearch(esClient, cfg.ElasticIndex)
	}

	// 🖼️ MinIO (optionnel)
	minioClient, err := database.ConnectMinIO(ctx, cfg)
	if err != nil {
		log.Printf("⚠️  MinIO indisponible, upload d'images désactivé: %v", err)
	}
	var images services.ImageStore
	if minioClient != nil {
		images = services.NewMinIOImages(minioClient, cfg.MinIOBucket, cfg.ImageURLTTL)
	}

	// 💳 Stripe
	payments := services.NewStripePayments(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
	if cfg.StripeWebhookSecret == "" {
		log.Println("⚠️  STRIPE_WEBHOOK_SECRET absent : signatures webhook non vérifiées")
	}

	// 📧 Emails
	var mailer services.Mailer = services.LogMailer{}
	if cfg.MailEnabled() {
		mailer = services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Company:  cfg.CompanyName,
		})
	}

	secret := []byte(cfg.JWTSecret)
	sessionStore := middleware.NewSessionStore(cfg.SessionSecret, cfg.CookieSecure, cfg.JWTTTL)
	bank := pa.BankAccount{Name: cfg.CompanyName, IBAN: cfg.CompanyIBAN, BIC: cfg.CompanyBIC}

	payment := pa.NewHandler(rates, *store, stores.carts, stores.products, payments, mailer, bank, cfg.Currency)

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Handlers{
		Product:        product.NewHandler(*store, stores.products, search, images),
		User:           user.NewHandler(*store, stores.carts, stores.blacklist, sessionStore, secret, cfg.JWTTTL),
		Payment:        payment,
		Admin:          admin.NewHandler(*store, stores.products, search, images, payment),
		Auth:           middleware.NewAuth(secret, sessionStore, stores.blacklist),
		Limiter:        middleware.NewRateLimiter(stores.counter),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	log.Printf("🚀 Serveur Cosmetics lancé sur le port %s (stockage: %s)", cfg.Port, cfg.StorageBackend)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Erreur serveur: %v", err)
	}
}

// connectStorage ouvre ScyllaDB et Redis, ou construit les stores mémoire
// quand STORAGE_BACKEND=memory.
func connectStorage(ctx context.Context, cfg *config.Config) (*repository.Store, caches, func()) {
	if cfg.StorageBackend == "memory" {
		log.Println("⚠️  Stockage en mémoire : les données seront perdues à l'arrêt")
		return repository.NewMemoryStore(), caches{
			carts:     cache.NewMemoryCartStore(),
			counter:   cache.NewMemoryCounter(),
			blacklist: cache.NewMemoryBlacklist(),
			products:  cache.NewMemoryProductCache(),
		}, func() {}
	}

	scylla, err := database.NewScyllaManager(cfg)
	if err != nil {
		log.Fatalf("❌ Erreur ScyllaDB: %v", err)
	}
	session := func(ks config.ScyllaKeyspace) *gocql.Session {
		s, err := scylla.Session(ks.Name)
		if err != nil {
			log.Fatalf("❌ Session ScyllaDB %s: %v", ks.Name, err)
		}
		return s
	}

	productsSession := session(cfg.ScyllaProducts)
	store := &repository.Store{
		Products:   repository.NewScyllaProducts(productsSession),
		Categories: repository.NewScyllaCategories(productsSession),
		Users:      repository.NewScyllaUsers(session(cfg.ScyllaUsers)),
		Orders:     repository.NewScyllaOrders(session(cfg.ScyllaOrders)),
	}
	log.Println("✅ ScyllaDB connecté")

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		scylla.Close()
		log.Fatalf("❌ Erreur Redis: %v", err)
	}
	log.Println("✅ Redis connecté")

	closeAll := func() {
		_ = rdb.Close()
		scylla.Close()
	}
	return store, caches{
		carts:     cache.NewRedisCartStore(rdb),
		counter:   cache.NewRedisCounter(rdb),
		blacklist: cache.NewRedisBlacklist(rdb),
		products:  cache.NewRedisProductCache(rdb),
	}, closeAll
}
