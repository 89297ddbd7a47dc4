package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusduel/internal/cache"
	"campusduel/internal/config"
	"campusduel/internal/repository"
	"campusduel/internal/service"
	"campusduel/internal/transport/rest"
	"campusduel/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	matchRepo := repository.NewMatchRepo(db)
	locationRepo := repository.NewLocationRepo(db)

	// Initialize caches
	matchCache := cache.NewMatchCache(rdb)
	presenceCache := cache.NewPresenceCache(rdb)
	poolCache := cache.NewPoolCache(rdb)

	// Initialize WebSocket hub
	wsHub := ws.NewHub(matchCache)
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	catalogSvc := service.NewCatalogService(locationRepo, poolCache)
	presenceSvc := service.NewPresenceService(presenceCache, time.Duration(cfg.PresenceGraceMS)*time.Millisecond)
	matchSvc := service.NewMatchService(matchRepo, catalogSvc, matchCache, presenceSvc, authSvc)
	defer matchSvc.Shutdown()

	// Inject broadcaster (wsHub implements service.Broadcaster)
	matchSvc.SetBroadcaster(wsHub)

	// Warm the catalog pool so exhaustion checks skip Mongo.
	if err := catalogSvc.WarmPool(ctx); err != nil {
		log.Printf("Warning: failed to warm location pool: %v", err)
	}
	if n, err := locationRepo.Count(ctx); err == nil {
		log.Printf("Location catalog: %d entries", n)
		if n == 0 {
			log.Println("Warning: catalog is empty, run cmd/seed first")
		}
	}

	// Create router with container
	container := &rest.Container{
		AuthService:  authSvc,
		MatchService: matchSvc,
		WSHub:        wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/matches")
		log.Println("  POST /v1/matches/{id}/join")
		log.Println("  POST /v1/matches/{id}/start")
		log.Println("  GET  /v1/matches/{id}")
		log.Println("  POST /v1/matches/{id}/guess")
		log.Println("  POST /v1/matches/{id}/advance")
		log.Println("  POST /v1/matches/{id}/leave")
		log.Println("  POST /v1/matches/{id}/heartbeat")
		log.Println("  GET  /v1/ws/matches/{id}")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
