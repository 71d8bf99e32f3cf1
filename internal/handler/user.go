// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/config"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/stats"
)

// UserHandler handles the public bot commands.
type UserHandler struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	stats    stats.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cfg *config.Config, userRepo *repository.UserRepository, statsStore stats.Store) *UserHandler {
	return &UserHandler{cfg: cfg, userRepo: userRepo, stats: statsStore}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HandleStart registers or refreshes the user row and shows the mini-app
// launch buttons.
func (h *UserHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	log.Info().Int64("user_id", sender.ID).Msg("Command: /start")

	if _, err := h.userRepo.Upsert(ctx, sender.ID, optString(sender.Username), optString(sender.FirstName)); err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to upsert user on /start")
	}

	menu := &tele.ReplyMarkup{}
	webAppBtn := menu.WebApp("🎰 TTPOKER 입장하기", &tele.WebApp{URL: h.cfg.WebApp.URL})
	startGameBtn := menu.Data("▶️ 게임 시작하기", "start_game")
	menu.Inline(
		menu.Row(webAppBtn),
		menu.Row(startGameBtn),
	)

	welcome := "안녕하세요! PokerNow 미니앱 연동 봇입니다.\n\n" +
		"아래 버튼을 사용해 보세요:\n" +
		"🃏 <b>TTPOKER 입장하기</b> - 텔레그램 안에서 미니앱을 엽니다.\n" +
		"▶️ <b>게임 시작하기</b> - 게임 시작 알림 + 플레이 횟수 기록.\n\n" +
		"또는 /stats 로 본인 통계를 확인할 수 있습니다.\n" +
		"도움말: /help"

	return c.Send(welcome, menu, tele.ModeHTML)
}

// HandleHelp shows the command overview.
func (h *UserHandler) HandleHelp(c tele.Context) error {
	text := "TTPOKER 봇 사용 방법:\n\n" +
		"- /start : 미니앱 열기 버튼 표시\n" +
		"- /stats : 내 참여 통계 확인\n" +
		"- /admin : 관리자 메뉴 (관리자만)\n" +
		"- /debug_token : 토큰/설정 상태 확인\n"
	return c.Send(text)
}

// HandleStats shows the in-memory play count for the sender.
func (h *UserHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	username, count, ok := h.stats.Get(sender.ID)
	if !ok {
		return c.Send("아직 기록된 게임이 없습니다.\n먼저 '게임 시작하기' 버튼을 눌러보세요.")
	}

	if username == "" {
		username = sender.Username
	}
	if username == "" {
		username = "(이름 없음)"
	}
	return c.Send(fmt.Sprintf("👤 사용자: @%s\n🃏 기록된 플레이 횟수: %d 회", username, count))
}

// HandleDebugToken shows the masked token and admin configuration. The full
// token is never exposed.
func (h *UserHandler) HandleDebugToken(c tele.Context) error {
	if h.cfg.Bot.Token == "" {
		return c.Send("❌ BOT_TOKEN 이 설정되지 않았습니다.")
	}

	ids := make([]int64, len(h.cfg.Admin.IDs))
	copy(ids, h.cfg.Admin.IDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = fmt.Sprintf("%d", id)
	}

	text := "✅ BOT_TOKEN 이 설정되어 있습니다.\n" +
		fmt.Sprintf("- 토큰: %s\n", h.cfg.MaskedToken()) +
		fmt.Sprintf("- ADMIN_IDS: [%s]\n", strings.Join(idStrs, ", ")) +
		fmt.Sprintf("- 미니앱 URL: %s\n", h.cfg.WebApp.URL) +
		"\n(실제 토큰 전체는 보안상 절대 표시하지 않습니다.)"
	return c.Send(text)
}

// HandleStartGame handles the start_game callback: bumps the play counter
// and confirms.
func (h *UserHandler) HandleStartGame(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	count := h.stats.Increment(sender.ID, sender.Username)
	log.Info().Int64("user_id", sender.ID).Int("play_count", count).Msg("Game start recorded")

	_ = c.Respond()
	return c.Send(fmt.Sprintf(
		"✅ 게임을 시작했습니다!\nPokerNow 방을 생성하거나 입장한 후 플레이를 즐겨주세요.\n\n현재까지 기록된 플레이 횟수: %d 회",
		count,
	))
}
