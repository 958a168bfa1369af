package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fazecat/momentumwatch/Internal/persist"
	"github.com/fazecat/momentumwatch/Internal/utils/config"
	"github.com/fazecat/momentumwatch/cmd/api/internal"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../../.env")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	apiServer := &internal.API{
		Store:      persist.NewStore(cfg.History.Dir, logger.Sugar()),
		JWTManager: internal.NewJWTManager(),
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(internal.CorsMiddleware)

	r.Get("/health", apiServer.HandleHealth)
	r.Post("/api/token", apiServer.HandleGenerateToken)

	// History routes require a token
	r.Group(func(r chi.Router) {
		r.Use(internal.JWTAuthMiddleware(apiServer.JWTManager))
		r.Get("/api/history", apiServer.HandleListHistory)
		r.Get("/api/history/{date}", apiServer.HandleGetHistory)
		r.Get("/api/latest", apiServer.HandleGetLatest)
	})

	addr := ":8080"
	if port := os.Getenv("API_PORT"); port != "" {
		addr = ":" + port
	}

	log.Printf("Starting history API server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
