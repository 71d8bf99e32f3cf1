package flow

import (
	"context"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/validate"
)

// EventDraft is the transient field set collected by the event create flow.
type EventDraft struct {
	Title    string
	Content  string
	ImageURL *string
}

const (
	eventStepTitle = iota
	eventStepContent
	eventStepImageURL
)

// EventCreateFlow collects the three announcement fields one turn at a time.
type EventCreateFlow struct {
	step   int
	draft  EventDraft
	commit func(ctx context.Context, d *EventDraft) (string, error)
}

// NewEventCreate starts an event create flow.
func NewEventCreate(commit func(ctx context.Context, d *EventDraft) (string, error)) *EventCreateFlow {
	return &EventCreateFlow{commit: commit}
}

func (f *EventCreateFlow) Prompt() string {
	switch f.step {
	case eventStepTitle:
		return "📢 새 이벤트 등록\n\nStep 1/3: 이벤트 제목을 입력해 주세요." + cancelHint
	case eventStepContent:
		return "Step 2/3: 이벤트 내용을 입력해 주세요." + cancelHint
	default:
		return "Step 3/3: 이벤트 이미지 URL을 입력해 주세요. (선택사항, 없으면 'skip')" + cancelHint
	}
}

func (f *EventCreateFlow) Cancelled() string {
	return "❌ 이벤트 등록이 취소되었습니다."
}

func (f *EventCreateFlow) Advance(ctx context.Context, input string) Result {
	switch f.step {
	case eventStepTitle:
		title, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "이벤트 제목을 입력해 주세요."}
		}
		f.draft.Title = title
	case eventStepContent:
		content, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "이벤트 내용을 입력해 주세요."}
		}
		f.draft.Content = content
	case eventStepImageURL:
		img, err := validate.OptionalHTTPURL(input)
		if err != nil {
			return Result{Reply: "올바른 URL 형식이 아닙니다. http:// 또는 https:// 로 시작하는 URL을 입력하거나 'skip' 을 입력해 주세요."}
		}
		f.draft.ImageURL = img

		reply, err := f.commit(ctx, &f.draft)
		if err != nil {
			return Result{Reply: "❌ 이벤트 등록 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", Done: true}
		}
		return Result{Reply: reply, Done: true}
	}

	f.step++
	return Result{Reply: f.Prompt()}
}
