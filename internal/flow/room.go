package flow

import (
	"context"
	"fmt"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/validate"
)

// RoomDraft is the transient field set collected by the room create flow.
// Nothing is persisted until the final step commits.
type RoomDraft struct {
	RoomName    string
	RoomURL     string
	Blinds      string
	MinBuyin    string
	GameTime    string
	Description *string
}

// Room create steps, in input order.
const (
	roomStepName = iota
	roomStepURL
	roomStepBlinds
	roomStepMinBuyin
	roomStepGameTime
	roomStepDescription
)

const cancelHint = "\n\n취소하려면 /cancel 를 입력하세요."

// RoomCreateFlow collects the six room fields one turn at a time.
type RoomCreateFlow struct {
	step   int
	draft  RoomDraft
	commit func(ctx context.Context, d *RoomDraft) (string, error)
}

// NewRoomCreate starts a room create flow. commit persists the finished
// draft and returns the success reply.
func NewRoomCreate(commit func(ctx context.Context, d *RoomDraft) (string, error)) *RoomCreateFlow {
	return &RoomCreateFlow{commit: commit}
}

func (f *RoomCreateFlow) Prompt() string {
	switch f.step {
	case roomStepName:
		return "📝 새 포커방 생성\n\n" +
			"Step 1/6: 방 이름을 입력해 주세요.\n" +
			"예: RN.1 TTPOKER 또는 프리미엄 1번방" + cancelHint
	case roomStepURL:
		return "Step 2/6: pokernow.club 방 URL을 입력해 주세요.\n" +
			"예: https://www.pokernow.club/games/xxxxxxxx" + cancelHint
	case roomStepBlinds:
		return "Step 3/6: 블라인드를 입력해 주세요.\n예: 100/200 또는 1만/2만" + cancelHint
	case roomStepMinBuyin:
		return "Step 4/6: 최소 바이인을 입력해 주세요.\n예: 10,000 또는 1만" + cancelHint
	case roomStepGameTime:
		return "Step 5/6: 게임 시간을 입력해 주세요.\n예: 매일 21:00 또는 2분 매너타임" + cancelHint
	default:
		return "Step 6/6: 방 설명을 입력해 주세요. (선택사항)\n" +
			"설명이 없으면 '없음' 또는 'skip' 을 입력하세요." + cancelHint
	}
}

func (f *RoomCreateFlow) Cancelled() string {
	return "❌ 방 생성이 취소되었습니다."
}

func (f *RoomCreateFlow) Advance(ctx context.Context, input string) Result {
	switch f.step {
	case roomStepName:
		name, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "방 이름을 입력해 주세요."}
		}
		f.draft.RoomName = name
	case roomStepURL:
		url, err := validate.HTTPURL(input)
		if err != nil {
			return Result{Reply: "올바른 URL 형식이 아닙니다. http:// 또는 https:// 로 시작하는 URL을 입력해 주세요."}
		}
		f.draft.RoomURL = url
	case roomStepBlinds:
		blinds, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "블라인드를 입력해 주세요."}
		}
		f.draft.Blinds = blinds
	case roomStepMinBuyin:
		buyin, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "최소 바이인을 입력해 주세요."}
		}
		f.draft.MinBuyin = buyin
	case roomStepGameTime:
		gameTime, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "게임 시간을 입력해 주세요."}
		}
		f.draft.GameTime = gameTime
	case roomStepDescription:
		f.draft.Description = validate.Optional(input)

		reply, err := f.commit(ctx, &f.draft)
		if err != nil {
			return Result{Reply: "❌ 방 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", Done: true}
		}
		return Result{Reply: reply, Done: true}
	}

	f.step++
	return Result{Reply: f.Prompt()}
}

// Editable room fields offered by the edit menu. current_players and
// max_players are numeric and commit through their own range-checked paths.
const (
	FieldRoomName       = "room_name"
	FieldRoomURL        = "room_url"
	FieldBlinds         = "blinds"
	FieldMinBuyin       = "min_buyin"
	FieldGameTime       = "game_time"
	FieldDescription    = "description"
	FieldContactTG      = "contact_telegram"
	FieldCurrentPlayers = "current_players"
	FieldMaxPlayers     = "max_players"
)

// FieldLabels maps editable field names to their menu labels.
var FieldLabels = map[string]string{
	FieldRoomName:       "방 이름",
	FieldRoomURL:        "방 URL",
	FieldBlinds:         "블라인드",
	FieldMinBuyin:       "최소 바이인",
	FieldGameTime:       "게임 시간",
	FieldDescription:    "설명",
	FieldContactTG:      "문의 텔레그램",
	FieldCurrentPlayers: "현재 인원",
	FieldMaxPlayers:     "최대 인원",
}

// RoomEditCommits are the single-field commit operations the edit flow can
// trigger. Each returns the success reply.
type RoomEditCommits struct {
	Field          func(ctx context.Context, roomID int64, field string, value *string) (string, error)
	CurrentPlayers func(ctx context.Context, roomID int64, count int) (string, error)
	MaxPlayers     func(ctx context.Context, roomID int64, max int) (string, error)
}

// RoomEditFlow asks for one new value and commits it immediately. The room
// and field were already chosen from inline menus.
type RoomEditFlow struct {
	roomID     int64
	roomName   string
	maxPlayers int
	field      string
	commits    RoomEditCommits
}

// NewRoomEdit starts an edit flow for one field of one room.
func NewRoomEdit(room *model.Room, field string, commits RoomEditCommits) *RoomEditFlow {
	return &RoomEditFlow{
		roomID:     room.ID,
		roomName:   room.RoomName,
		maxPlayers: room.MaxPlayers,
		field:      field,
		commits:    commits,
	}
}

func (f *RoomEditFlow) Prompt() string {
	label := FieldLabels[f.field]
	switch f.field {
	case FieldRoomURL:
		return fmt.Sprintf("✏️ [%s] 새 URL을 입력해 주세요. (http:// 또는 https:// 로 시작)%s", f.roomName, cancelHint)
	case FieldDescription:
		return fmt.Sprintf("✏️ [%s] 새 설명을 입력해 주세요. 지우려면 '없음' 을 입력하세요.%s", f.roomName, cancelHint)
	case FieldContactTG:
		return fmt.Sprintf("✏️ [%s] 문의 텔레그램 핸들을 입력해 주세요. (@ 는 생략 가능)%s", f.roomName, cancelHint)
	case FieldCurrentPlayers:
		return fmt.Sprintf("✏️ [%s] 현재 인원을 입력해 주세요. (0~%d)%s", f.roomName, f.maxPlayers, cancelHint)
	case FieldMaxPlayers:
		return fmt.Sprintf("✏️ [%s] 최대 인원을 입력해 주세요. (1~100)%s", f.roomName, cancelHint)
	default:
		return fmt.Sprintf("✏️ [%s] 새 %s 값을 입력해 주세요.%s", f.roomName, label, cancelHint)
	}
}

func (f *RoomEditFlow) Cancelled() string {
	return "❌ 방 수정이 취소되었습니다."
}

const editFailReply = "❌ 수정 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."

func (f *RoomEditFlow) Advance(ctx context.Context, input string) Result {
	switch f.field {
	case FieldCurrentPlayers:
		n, err := validate.IntField(input)
		if err != nil {
			return Result{Reply: "숫자를 입력해 주세요."}
		}
		if err := validate.PlayerCount(n, f.maxPlayers); err != nil {
			return Result{Reply: fmt.Sprintf("현재 인원은 0~%d 사이여야 합니다.", f.maxPlayers)}
		}
		reply, err := f.commits.CurrentPlayers(ctx, f.roomID, n)
		if err != nil {
			return Result{Reply: editFailReply, Done: true}
		}
		return Result{Reply: reply, Done: true}

	case FieldMaxPlayers:
		n, err := validate.IntField(input)
		if err != nil {
			return Result{Reply: "숫자를 입력해 주세요."}
		}
		if err := validate.MaxPlayers(n); err != nil {
			return Result{Reply: "최대 인원은 1~100 사이여야 합니다."}
		}
		reply, err := f.commits.MaxPlayers(ctx, f.roomID, n)
		if err != nil {
			return Result{Reply: editFailReply, Done: true}
		}
		return Result{Reply: reply, Done: true}
	}

	var value *string
	switch f.field {
	case FieldRoomURL:
		url, err := validate.HTTPURL(input)
		if err != nil {
			return Result{Reply: "올바른 URL 형식이 아닙니다. http:// 또는 https:// 로 시작하는 URL을 입력해 주세요."}
		}
		value = &url
	case FieldDescription:
		value = validate.Optional(input)
	case FieldContactTG:
		if v := validate.Optional(input); v != nil {
			handle := validate.ContactHandle(*v)
			value = &handle
		}
	default:
		v, err := validate.Required(input)
		if err != nil {
			return Result{Reply: fmt.Sprintf("%s 값을 입력해 주세요.", FieldLabels[f.field])}
		}
		value = &v
	}

	reply, err := f.commits.Field(ctx, f.roomID, f.field, value)
	if err != nil {
		return Result{Reply: editFailReply, Done: true}
	}
	return Result{Reply: reply, Done: true}
}
