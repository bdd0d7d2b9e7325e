package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/rusneurosoft/neuro-connector/internal/config"
	"github.com/rusneurosoft/neuro-connector/internal/logger"
	"github.com/rusneurosoft/neuro-connector/internal/miniapp"
	"github.com/rusneurosoft/neuro-connector/internal/store"
	"github.com/rusneurosoft/neuro-connector/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	log := logger.Logger

	// --- DB ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	pg := store.NewPostgres(db)
	bot := telegram.NewClient(cfg.TelegramToken)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	handler := miniapp.NewHandler(pg, bot, log)
	miniapp.RegisterRoutes(r, handler)
	miniapp.RegisterStatic(r, cfg.StaticDir)

	log.Info().Str("port", cfg.HTTPPort).Msg("mini app listening")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, r); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
