package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tinytiles/internal/game"
	"tinytiles/internal/handlers"
	"tinytiles/internal/logging"
	"tinytiles/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	var store game.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := storage.New(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database")
		}
		store = storage.NewStore(db)
	} else {
		log.Warn().Msg("DATABASE_URL not set, using in-memory store")
		store = game.NewMemStore()
	}

	svc := game.NewService(game.NewRegistry(), store)
	h := handlers.NewHandler(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(handlers.JSONContentType)
	h.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().
		Str("port", port).
		Str("commit", commit).
		Str("buildDate", buildDate).
		Msg("tinytiles listening")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
