package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/rusneurosoft/neuro-connector/internal/ai"
	"github.com/rusneurosoft/neuro-connector/internal/config"
	"github.com/rusneurosoft/neuro-connector/internal/flow"
	"github.com/rusneurosoft/neuro-connector/internal/logger"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	pg := store.NewPostgres(db)
	if err := pg.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema init failed")
	}

	// --- sessions ---
	var sessions flow.SessionStore
	if cfg.RedisURL != "" {
		redisStore, err := flow.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		sessions = redisStore
		log.Info().Msg("sessions in redis")
	} else {
		sessions = flow.NewMemoryStore()
		log.Info().Msg("sessions in memory")
	}

	// --- AI ---
	generator := ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, log)
	whisperKey := cfg.OpenAIAPIKey
	if whisperKey == "" {
		whisperKey = cfg.OpenRouterAPIKey
	}
	whisper := ai.NewWhisper(whisperKey)

	// --- Telegram + engine wiring ---
	bot := telegram.NewClient(cfg.TelegramToken)
	notifier := telegram.NewGroupNotifier(bot, cfg.SupportGroupID, log)
	transcriber := telegram.NewOggTranscriber(bot, whisper)

	branding := flow.Branding{
		CompanyName:  cfg.Company.Name,
		Description:  cfg.Company.Description,
		Email:        cfg.Company.Email,
		Phone:        cfg.Company.Phone,
		Telegram:     cfg.Company.Telegram,
		Website:      cfg.Company.Website,
		CasesLink:    cfg.Company.CasesLink,
		BookCallLink: cfg.Company.BookCallLink,
		WebAppURL:    cfg.WebAppURL,
	}

	table := flow.NewTable()
	handoff := flow.NewHandoff(notifier, pg, generator, branding, log)
	engine := flow.NewEngine(table, sessions, transcriber, handoff, notifier, pg, branding, log)

	listener := telegram.NewListener(bot, engine, pg, cfg.WebAppURL, log)
	if err := listener.RegisterCommands(ctx); err != nil {
		log.Warn().Err(err).Msg("command registration failed")
	}

	log.Info().Msg("bot started")
	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("listener stopped")
	}
	log.Info().Msg("bot stopped")
}
