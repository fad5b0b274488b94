package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/repository/memstore"
	"storefront/internal/service"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	log := logrus.WithField("area", "main")

	if problems := cfg.Validate(); len(problems) > 0 {
		log.WithField("problems", problems).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	cartCache, closeCache := openCartCache(ctx, cfg, log)
	defer closeCache()

	creds := auth.NewCredentials(cfg.JWTSecret, cfg.AccessTokenTTL)
	catalog := service.NewCatalogService(store.Products)
	carts := service.NewCartService(store.Carts, catalog, cartCache)
	ledger := service.NewOrderLedger(store.Orders, store.Users)
	checkouts := service.NewCheckoutService(store.Checkouts, ledger, carts, store.Tx)
	users := service.NewUserService(store.Users, creds)

	limiter := middleware.NewLimiter(cfg.CartRateLimitRPS, cfg.CartRateBurst, 10*time.Minute)
	go limiter.Run(ctx, time.Minute)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logrus.StandardLogger()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	handlers.RegisterRoutes(r, handlers.Services{
		Catalog:     catalog,
		Carts:       carts,
		Checkouts:   checkouts,
		Ledger:      ledger,
		Users:       users,
		Session:     service.NewSessionOrchestrator(carts, users, checkouts),
		Subscribers: service.NewSubscriberService(store.Subscribers),
		Ping:        store.Ping,
	}, creds, middleware.RateLimit(limiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if n := checkouts.CleanupFailures(); n > 0 {
		log.WithField("count", n).Warn("carts left behind after finalize")
	}
}

// openStore connects to MongoDB, or falls back to the in-memory store when
// STORAGE_DRIVER=memory.
func openStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (*repository.Store, func()) {
	if cfg.StorageDriver == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("mongo connect failed")
	}
	if err := database.EnsureIndexes(connectCtx, db); err != nil {
		log.WithError(err).Warn("index setup incomplete")
	}
	if !cfg.MongoTransactions {
		log.Warn("mongo transactions disabled; finalize writes commit separately")
	}

	return repository.NewMongoStore(db, cfg.MongoTransactions), func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}
}

// openCartCache returns the Redis cart cache when REDIS_ADDR is set. An
// unreachable Redis disables caching instead of failing startup.
func openCartCache(ctx context.Context, cfg config.Config, log *logrus.Entry) (cache.CartCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable; cart cache disabled")
		_ = client.Close()
		return cache.Noop{}, func() {}
	}

	log.WithField("addr", cfg.RedisAddr).Info("cart cache enabled")
	return cache.NewRedisCache(client, cfg.CartCacheTTL), func() { _ = client.Close() }
}
