package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pairlink/backend/internal/api/handler"
	"pairlink/backend/internal/config"
	"pairlink/backend/internal/engine"
	"pairlink/backend/internal/matchmaking"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
	"pairlink/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(settings config.Settings) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(settings.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddr,
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.PendingIntent{},
		&models.Connection{},
		&models.ConnectionTimelog{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting PairLink Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	settings := config.Load()

	db, rdb := setupDependencies(settings)
	s := storage.NewStorageService(db, rdb)

	if settings.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set!")
	}

	// The bot is both the update source and the engine's outbound gateway,
	// so the two are wired in two steps.
	botService, err := telegram.NewBotService(settings.BotToken, nil)
	if err != nil {
		log.Fatalf("Failed to start the Telegram bot: %v", err)
	}
	coordinator := matchmaking.NewCoordinator(s, botService, settings.SymmetricCancel)
	eng := engine.NewEngine(s, botService, coordinator)
	botService.SetHandler(eng)

	go botService.Run()

	r := gin.Default()
	h := handler.NewHandler(s, settings.JWTSecret)

	r.GET("/token", h.GetToken)
	authorized := r.Group("/", h.RequireAuth())
	authorized.GET("/connections", h.ListConnections)
	authorized.GET("/pending", h.ListPendingIntents)
	authorized.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
