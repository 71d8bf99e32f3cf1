// Package main is the entry point for the poker mini-app bot and its
// companion HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/bot"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/config"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/flow"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/pkg/db"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/service"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/stats"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/web"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().
		Str("token", cfg.MaskedToken()).
		Ints64("admin_ids", cfg.Admin.IDs).
		Str("webapp_url", cfg.WebApp.URL).
		Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	roomRepo := repository.NewRoomRepository(dbPool.Pool)
	userRepo := repository.NewUserRepository(dbPool.Pool)
	bannerRepo := repository.NewBannerRepository(dbPool.Pool)
	couponRepo := repository.NewCouponRepository(dbPool.Pool)
	eventRepo := repository.NewEventRepository(dbPool.Pool)

	// One-off data fix: rooms created under the old 9-seat default.
	bumped, err := roomRepo.BumpLegacyMaxPlayers(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update legacy room capacities")
	}
	if bumped > 0 {
		log.Info().Int64("rooms", bumped).Msg("Updated legacy room capacities to 10")
	}

	// Initialize services
	roomService := service.NewRoomService(roomRepo, userRepo)
	couponService := service.NewCouponService(couponRepo)

	statsStore := stats.NewMemoryStore()
	flows := flow.NewStore()

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:        cfg,
		RoomService:   roomService,
		CouponService: couponService,
		BannerRepo:    bannerRepo,
		EventRepo:     eventRepo,
		UserRepo:      userRepo,
		Stats:         statsStore,
		Flows:         flows,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	server := web.NewServer(&web.Dependencies{
		Config:        cfg,
		RoomService:   roomService,
		CouponService: couponService,
		RoomRepo:      roomRepo,
		UserRepo:      userRepo,
		BannerRepo:    bannerRepo,
		EventRepo:     eventRepo,
	})

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	go func() {
		if err := server.Start(cfg.Server.Addr); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Stopped gracefully")
}
