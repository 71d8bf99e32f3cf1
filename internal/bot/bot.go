// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/config"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/flow"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/handler"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/service"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/stats"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot   *tele.Bot
	cfg   *config.Config
	flows *flow.Store

	userHandler  *handler.UserHandler
	adminHandler *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config        *config.Config
	RoomService   *service.RoomService
	CouponService *service.CouponService
	BannerRepo    *repository.BannerRepository
	EventRepo     *repository.EventRepository
	UserRepo      *repository.UserRepository
	Stats         stats.Store
	Flows         *flow.Store
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:   teleBot,
		cfg:   deps.Config,
		flows: deps.Flows,
	}

	b.userHandler = handler.NewUserHandler(deps.Config, deps.UserRepo, deps.Stats)
	b.adminHandler = handler.NewAdminHandler(
		deps.Config, deps.Flows,
		deps.RoomService, deps.CouponService,
		deps.BannerRepo, deps.EventRepo,
	)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware())
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.userHandler.HandleStart)
	b.bot.Handle("/help", b.userHandler.HandleHelp)
	b.bot.Handle("/stats", b.userHandler.HandleStats)
	b.bot.Handle("/debug_token", b.userHandler.HandleDebugToken)

	// Admin commands
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin", b.adminHandler.HandleMenu)
	adminGroup.Handle("/cancel", b.adminHandler.HandleCancel)

	// Plain text feeds the sender's in-flight admin flow, if any.
	b.bot.Handle(tele.OnText, b.adminHandler.HandleText)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes inline-button callbacks. Telebot v3 prefixes
// callback data with \f.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	if strings.HasPrefix(data, "start_game") {
		return b.userHandler.HandleStartGame(c)
	}
	if strings.HasPrefix(data, "admin_") {
		return b.adminHandler.HandleCallback(c)
	}

	log.Warn().Str("data", data).Msg("Unhandled callback")
	return c.Respond()
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
