package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/config"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/flow"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/service"
)

// Callback uniques used by the admin inline menus.
const (
	cbCreateRoom   = "admin_create_room"
	cbEditRoom     = "admin_edit_room"
	cbEditPick     = "admin_edit_pick"
	cbEditField    = "admin_edit_field"
	cbDeleteRoom   = "admin_delete_room"
	cbDeletePick   = "admin_delete_pick"
	cbCreateBanner = "admin_create_banner"
	cbBanners      = "admin_banners"
	cbBannerToggle = "admin_banner_toggle"
	cbBannerDelete = "admin_banner_delete"
	cbIssueCoupon  = "admin_issue_coupon"
	cbRedeemCoupon = "admin_redeem_coupon"
	cbCreateEvent  = "admin_create_event"
	cbEvents       = "admin_events"
	cbEventToggle  = "admin_event_toggle"
	cbEventDelete  = "admin_event_delete"
	cbStats        = "admin_stats"
)

// AdminHandler handles the /admin menu and its multi-step flows.
type AdminHandler struct {
	cfg           *config.Config
	flows         *flow.Store
	roomService   *service.RoomService
	couponService *service.CouponService
	bannerRepo    *repository.BannerRepository
	eventRepo     *repository.EventRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	cfg *config.Config,
	flows *flow.Store,
	roomService *service.RoomService,
	couponService *service.CouponService,
	bannerRepo *repository.BannerRepository,
	eventRepo *repository.EventRepository,
) *AdminHandler {
	return &AdminHandler{
		cfg:           cfg,
		flows:         flows,
		roomService:   roomService,
		couponService: couponService,
		bannerRepo:    bannerRepo,
		eventRepo:     eventRepo,
	}
}

// HandleMenu shows the admin main menu.
func (h *AdminHandler) HandleMenu(c tele.Context) error {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("🏠 방 생성", cbCreateRoom), menu.Data("✏️ 방 수정", cbEditRoom)),
		menu.Row(menu.Data("🗑️ 방 삭제", cbDeleteRoom), menu.Data("🖼️ 배너 등록", cbCreateBanner)),
		menu.Row(menu.Data("📋 배너 관리", cbBanners), menu.Data("🎟️ 쿠폰 발급", cbIssueCoupon)),
		menu.Row(menu.Data("✅ 쿠폰 사용", cbRedeemCoupon), menu.Data("📢 이벤트 등록", cbCreateEvent)),
		menu.Row(menu.Data("🗂️ 이벤트 관리", cbEvents), menu.Data("📊 통계", cbStats)),
	)
	return c.Send("🛠️ 관리자 메뉴\n\n원하는 작업을 선택해 주세요.", menu)
}

// HandleCancel discards the sender's in-flight flow, if any.
func (h *AdminHandler) HandleCancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if reply, ok := h.flows.Cancel(sender.ID); ok {
		return c.Send(reply)
	}
	return c.Send("진행 중인 작업이 없습니다.")
}

// HandleText feeds plain text into the sender's in-flight flow. Text from
// users with no active flow is ignored.
func (h *AdminHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	res, ok := h.flows.Advance(context.Background(), sender.ID, c.Text())
	if !ok {
		return nil
	}
	return c.Send(res.Reply)
}

// HandleCallback routes the admin inline-menu callbacks. Callback data
// arrives as "\f<unique>|<payload>".
func (h *AdminHandler) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || c.Sender() == nil {
		return nil
	}
	if !h.cfg.IsAdmin(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: "관리자만 사용할 수 있습니다."})
	}

	data := strings.TrimPrefix(cb.Data, "\f")
	unique, payload := data, ""
	if i := strings.IndexByte(data, '|'); i >= 0 {
		unique, payload = data[:i], data[i+1:]
	}

	ctx := context.Background()
	adminID := c.Sender().ID

	var err error
	switch unique {
	case cbCreateRoom:
		err = c.Send(h.flows.Begin(adminID, flow.NewRoomCreate(h.commitRoomCreate)))
	case cbEditRoom:
		err = h.sendRoomList(ctx, c, cbEditPick, "✏️ 수정할 방을 선택해 주세요.")
	case cbEditPick:
		err = h.sendFieldMenu(ctx, c, payload)
	case cbEditField:
		err = h.beginRoomEdit(ctx, c, payload)
	case cbDeleteRoom:
		err = h.sendRoomList(ctx, c, cbDeletePick, "🗑️ 삭제할 방을 선택해 주세요.")
	case cbDeletePick:
		err = h.deleteRoom(ctx, c, payload)
	case cbCreateBanner:
		err = c.Send(h.flows.Begin(adminID, flow.NewBannerCreate(h.commitBannerCreate)))
	case cbBanners:
		err = h.sendBannerList(ctx, c)
	case cbBannerToggle:
		err = h.toggleBanner(ctx, c, payload)
	case cbBannerDelete:
		err = h.deleteBanner(ctx, c, payload)
	case cbIssueCoupon:
		err = c.Send(h.flows.Begin(adminID, flow.NewCouponIssue(h.commitCouponIssue)))
	case cbRedeemCoupon:
		err = c.Send(h.flows.Begin(adminID, flow.NewCouponRedeem(h.commitCouponRedeem)))
	case cbCreateEvent:
		err = c.Send(h.flows.Begin(adminID, flow.NewEventCreate(h.commitEventCreate)))
	case cbEvents:
		err = h.sendEventList(ctx, c)
	case cbEventToggle:
		err = h.toggleEvent(ctx, c, payload)
	case cbEventDelete:
		err = h.deleteEvent(ctx, c, payload)
	case cbStats:
		err = h.sendStats(ctx, c)
	default:
		log.Warn().Str("data", data).Msg("Unknown admin callback")
	}

	if respondErr := c.Respond(); respondErr != nil && err == nil {
		err = respondErr
	}
	return err
}

// --- room flows ---

func (h *AdminHandler) commitRoomCreate(ctx context.Context, d *flow.RoomDraft) (string, error) {
	room, err := h.roomService.Create(ctx, &model.Room{
		RoomName:    d.RoomName,
		RoomURL:     d.RoomURL,
		Blinds:      d.Blinds,
		MinBuyin:    d.MinBuyin,
		GameTime:    d.GameTime,
		Description: d.Description,
	})
	if err != nil {
		return "", err
	}

	desc := "없음"
	if room.Description != nil {
		desc = *room.Description
	}
	return fmt.Sprintf(
		"✅ 방 생성 완료!\n\n"+
			"🏷️ 이름: %s\n"+
			"🔗 URL: %s\n"+
			"♠️ 블라인드: %s\n"+
			"💰 최소 바이인: %s\n"+
			"🕐 게임 시간: %s\n"+
			"📝 설명: %s\n"+
			"👥 인원: %d/%d\n\n"+
			"(방 ID: %d)",
		room.RoomName, room.RoomURL, room.Blinds, room.MinBuyin, room.GameTime,
		desc, room.CurrentPlayers, room.MaxPlayers, room.ID,
	), nil
}

func (h *AdminHandler) sendRoomList(ctx context.Context, c tele.Context, pickUnique, title string) error {
	rooms, err := h.roomService.ListAll(ctx)
	if err != nil {
		return c.Send("❌ 방 목록 조회에 실패했습니다.")
	}
	if len(rooms) == 0 {
		return c.Send("등록된 방이 없습니다.")
	}

	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(rooms))
	for _, room := range rooms {
		label := fmt.Sprintf("[%d] %s (%s)", room.ID, room.RoomName, room.Status)
		rows = append(rows, menu.Row(menu.Data(label, pickUnique, strconv.FormatInt(room.ID, 10))))
	}
	menu.Inline(rows...)
	return c.Send(title, menu)
}

func (h *AdminHandler) sendFieldMenu(ctx context.Context, c tele.Context, payload string) error {
	roomID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 방 ID 입니다.")
	}
	room, err := h.roomService.GetByID(ctx, roomID)
	if err != nil {
		return c.Send("❌ 해당 방을 찾을 수 없습니다.")
	}

	fields := []string{
		flow.FieldRoomName, flow.FieldRoomURL, flow.FieldBlinds,
		flow.FieldMinBuyin, flow.FieldGameTime, flow.FieldDescription,
		flow.FieldContactTG, flow.FieldCurrentPlayers, flow.FieldMaxPlayers,
	}
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, (len(fields)+1)/2)
	for i := 0; i < len(fields); i += 2 {
		btns := []tele.Btn{menu.Data(flow.FieldLabels[fields[i]], cbEditField, payload+":"+fields[i])}
		if i+1 < len(fields) {
			btns = append(btns, menu.Data(flow.FieldLabels[fields[i+1]], cbEditField, payload+":"+fields[i+1]))
		}
		rows = append(rows, menu.Row(btns...))
	}
	menu.Inline(rows...)
	return c.Send(fmt.Sprintf("✏️ [%s] 수정할 항목을 선택해 주세요.", room.RoomName), menu)
}

func (h *AdminHandler) beginRoomEdit(ctx context.Context, c tele.Context, payload string) error {
	idStr, field, ok := strings.Cut(payload, ":")
	if !ok {
		return c.Send("❌ 잘못된 요청입니다.")
	}
	roomID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 방 ID 입니다.")
	}
	room, err := h.roomService.GetByID(ctx, roomID)
	if err != nil {
		return c.Send("❌ 해당 방을 찾을 수 없습니다.")
	}

	commits := flow.RoomEditCommits{
		Field: func(ctx context.Context, roomID int64, field string, value *string) (string, error) {
			updated, err := h.roomService.EditField(ctx, roomID, field, value)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ [%s] %s 항목이 수정되었습니다.", updated.RoomName, flow.FieldLabels[field]), nil
		},
		CurrentPlayers: func(ctx context.Context, roomID int64, count int) (string, error) {
			updated, err := h.roomService.SetCurrentPlayers(ctx, roomID, count)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ [%s] 현재 인원이 %d/%d 로 수정되었습니다.",
				updated.RoomName, updated.CurrentPlayers, updated.MaxPlayers), nil
		},
		MaxPlayers: func(ctx context.Context, roomID int64, max int) (string, error) {
			updated, err := h.roomService.SetMaxPlayers(ctx, roomID, max)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ [%s] 최대 인원이 %d 명으로 수정되었습니다.",
				updated.RoomName, updated.MaxPlayers), nil
		},
	}
	return c.Send(h.flows.Begin(c.Sender().ID, flow.NewRoomEdit(room, field, commits)))
}

func (h *AdminHandler) deleteRoom(ctx context.Context, c tele.Context, payload string) error {
	roomID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 방 ID 입니다.")
	}
	if err := h.roomService.Delete(ctx, roomID); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.Send("❌ 해당 방을 찾을 수 없습니다.")
		}
		log.Error().Err(err).Int64("room_id", roomID).Msg("Failed to delete room")
		return c.Send("❌ 방 삭제에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf("🗑️ 방 (ID: %d) 이 삭제되었습니다.", roomID))
}

// --- banners ---

func (h *AdminHandler) commitBannerCreate(ctx context.Context, d *flow.BannerDraft) (string, error) {
	banner, err := h.bannerRepo.Create(ctx, &model.Banner{
		ImageURL:    d.ImageURL,
		Title:       d.Title,
		Description: d.Description,
		LinkURL:     d.LinkURL,
		OrderNum:    d.OrderNum,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 배너가 등록되었습니다. (ID: %d, 순서: %d)", banner.ID, banner.OrderNum), nil
}

func (h *AdminHandler) sendBannerList(ctx context.Context, c tele.Context) error {
	banners, err := h.bannerRepo.ListAll(ctx)
	if err != nil {
		return c.Send("❌ 배너 목록 조회에 실패했습니다.")
	}
	if len(banners) == 0 {
		return c.Send("등록된 배너가 없습니다.")
	}

	var sb strings.Builder
	sb.WriteString("📋 배너 목록\n\n")
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(banners))
	for _, b := range banners {
		title := "(제목 없음)"
		if b.Title != nil {
			title = *b.Title
		}
		fmt.Fprintf(&sb, "[%d] %s — 순서 %d, %s\n", b.ID, title, b.OrderNum, b.Status)

		toggleLabel := fmt.Sprintf("⏸️ %d 비활성화", b.ID)
		if b.Status != model.StatusActive {
			toggleLabel = fmt.Sprintf("▶️ %d 활성화", b.ID)
		}
		id := strconv.FormatInt(b.ID, 10)
		rows = append(rows, menu.Row(
			menu.Data(toggleLabel, cbBannerToggle, id),
			menu.Data(fmt.Sprintf("🗑️ %d 삭제", b.ID), cbBannerDelete, id),
		))
	}
	menu.Inline(rows...)
	return c.Send(sb.String(), menu)
}

func (h *AdminHandler) toggleBanner(ctx context.Context, c tele.Context, payload string) error {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 배너 ID 입니다.")
	}
	status, err := h.bannerRepo.ToggleStatus(ctx, id)
	if err != nil {
		if err == repository.ErrBannerNotFound {
			return c.Send("❌ 해당 배너를 찾을 수 없습니다.")
		}
		log.Error().Err(err).Int64("banner_id", id).Msg("Failed to toggle banner")
		return c.Send("❌ 배너 상태 변경에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf("✅ 배너 (ID: %d) 상태가 %s 로 변경되었습니다.", id, status))
}

func (h *AdminHandler) deleteBanner(ctx context.Context, c tele.Context, payload string) error {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 배너 ID 입니다.")
	}
	if err := h.bannerRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrBannerNotFound {
			return c.Send("❌ 해당 배너를 찾을 수 없습니다.")
		}
		log.Error().Err(err).Int64("banner_id", id).Msg("Failed to delete banner")
		return c.Send("❌ 배너 삭제에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf("🗑️ 배너 (ID: %d) 가 삭제되었습니다.", id))
}

// --- coupons ---

func (h *AdminHandler) commitCouponIssue(ctx context.Context, d *flow.CouponDraft) (string, error) {
	report := h.couponService.IssueBatch(ctx, d.TargetIDs, d.Title, d.Description, d.Amount, d.ValidityDays)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎟️ 쿠폰 발급 결과: 성공 %d건, 실패 %d건\n", len(report.Issued), len(report.Failed))
	if len(report.Issued) > 0 {
		sb.WriteString("\n발급된 쿠폰:\n")
		for _, coupon := range report.Issued {
			fmt.Fprintf(&sb, "- %d → %s\n", coupon.UserID, coupon.CouponCode)
		}
	}
	if len(report.Failed) > 0 {
		sb.WriteString("\n실패:\n")
		for _, f := range report.Failed {
			fmt.Fprintf(&sb, "- %d: 발급 실패\n", f.UserID)
			log.Error().Err(f.Err).Int64("user_id", f.UserID).Msg("Coupon issue failed")
		}
	}
	return sb.String(), nil
}

func (h *AdminHandler) commitCouponRedeem(ctx context.Context, code string) (string, error) {
	result, err := h.couponService.Redeem(ctx, code)
	if err != nil {
		return "", err
	}

	switch result.Status {
	case service.RedeemNotFound:
		return "❌ 존재하지 않는 쿠폰 코드입니다.", nil
	case service.RedeemAlreadyUsed:
		when := "(시간 불명)"
		if result.Coupon != nil && result.Coupon.UsedAt != nil {
			when = result.Coupon.UsedAt.Format("2006-01-02 15:04")
		}
		return fmt.Sprintf("⚠️ 이미 사용된 쿠폰입니다. (사용 시각: %s)", when), nil
	case service.RedeemExpired:
		when := "(시간 불명)"
		if result.Coupon != nil && result.Coupon.ExpiresAt != nil {
			when = result.Coupon.ExpiresAt.Format("2006-01-02 15:04")
		}
		return fmt.Sprintf("⚠️ 만료된 쿠폰입니다. (만료 시각: %s)", when), nil
	default:
		coupon := result.Coupon
		return fmt.Sprintf(
			"✅ 쿠폰 사용 처리 완료!\n\n🎟️ %s\n💰 할인: %d\n👤 소유자: %d",
			coupon.Title, coupon.DiscountAmount, coupon.UserID,
		), nil
	}
}

// --- events ---

func (h *AdminHandler) commitEventCreate(ctx context.Context, d *flow.EventDraft) (string, error) {
	event, err := h.eventRepo.Create(ctx, &model.Event{
		Title:    d.Title,
		Content:  d.Content,
		ImageURL: d.ImageURL,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 이벤트가 등록되었습니다. (ID: %d)\n📢 %s", event.ID, event.Title), nil
}

func (h *AdminHandler) sendEventList(ctx context.Context, c tele.Context) error {
	events, err := h.eventRepo.ListAll(ctx)
	if err != nil {
		return c.Send("❌ 이벤트 목록 조회에 실패했습니다.")
	}
	if len(events) == 0 {
		return c.Send("등록된 이벤트가 없습니다.")
	}

	var sb strings.Builder
	sb.WriteString("🗂️ 이벤트 목록\n\n")
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(events))
	for _, e := range events {
		fmt.Fprintf(&sb, "[%d] %s — %s\n", e.ID, e.Title, e.Status)

		toggleLabel := fmt.Sprintf("⏸️ %d 비활성화", e.ID)
		if e.Status != model.StatusActive {
			toggleLabel = fmt.Sprintf("▶️ %d 활성화", e.ID)
		}
		id := strconv.FormatInt(e.ID, 10)
		rows = append(rows, menu.Row(
			menu.Data(toggleLabel, cbEventToggle, id),
			menu.Data(fmt.Sprintf("🗑️ %d 삭제", e.ID), cbEventDelete, id),
		))
	}
	menu.Inline(rows...)
	return c.Send(sb.String(), menu)
}

func (h *AdminHandler) toggleEvent(ctx context.Context, c tele.Context, payload string) error {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 이벤트 ID 입니다.")
	}
	status, err := h.eventRepo.ToggleStatus(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.Send("❌ 해당 이벤트를 찾을 수 없습니다.")
		}
		log.Error().Err(err).Int64("event_id", id).Msg("Failed to toggle event")
		return c.Send("❌ 이벤트 상태 변경에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf("✅ 이벤트 (ID: %d) 상태가 %s 로 변경되었습니다.", id, status))
}

func (h *AdminHandler) deleteEvent(ctx context.Context, c tele.Context, payload string) error {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send("❌ 잘못된 이벤트 ID 입니다.")
	}
	if err := h.eventRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrEventNotFound {
			return c.Send("❌ 해당 이벤트를 찾을 수 없습니다.")
		}
		log.Error().Err(err).Int64("event_id", id).Msg("Failed to delete event")
		return c.Send("❌ 이벤트 삭제에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf("🗑️ 이벤트 (ID: %d) 가 삭제되었습니다.", id))
}

// --- stats ---

func (h *AdminHandler) sendStats(ctx context.Context, c tele.Context) error {
	stats, err := h.roomService.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load stats")
		return c.Send("❌ 통계 조회에 실패했습니다.")
	}
	return c.Send(fmt.Sprintf(
		"📊 서비스 통계\n\n🏠 전체 방: %d\n🟢 활성 방: %d\n👤 등록 사용자: %d",
		stats.TotalRooms, stats.ActiveRooms, stats.TotalUsers,
	))
}
