package flow

import (
	"context"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/validate"
)

// BannerDraft is the transient field set collected by the banner create flow.
type BannerDraft struct {
	ImageURL    string
	Title       *string
	Description *string
	LinkURL     *string
	OrderNum    int
}

const (
	bannerStepImageURL = iota
	bannerStepTitle
	bannerStepDescription
	bannerStepLinkURL
	bannerStepOrderNum
)

// BannerCreateFlow collects the five banner fields one turn at a time.
type BannerCreateFlow struct {
	step   int
	draft  BannerDraft
	commit func(ctx context.Context, d *BannerDraft) (string, error)
}

// NewBannerCreate starts a banner create flow.
func NewBannerCreate(commit func(ctx context.Context, d *BannerDraft) (string, error)) *BannerCreateFlow {
	return &BannerCreateFlow{commit: commit}
}

func (f *BannerCreateFlow) Prompt() string {
	switch f.step {
	case bannerStepImageURL:
		return "🖼️ 새 배너 등록\n\n" +
			"Step 1/5: 배너 이미지 URL을 입력해 주세요.\n" +
			"예: https://example.com/banner.png" + cancelHint
	case bannerStepTitle:
		return "Step 2/5: 배너 제목을 입력해 주세요. (선택사항, 없으면 'skip')" + cancelHint
	case bannerStepDescription:
		return "Step 3/5: 배너 설명을 입력해 주세요. (선택사항, 없으면 'skip')" + cancelHint
	case bannerStepLinkURL:
		return "Step 4/5: 배너 클릭 시 이동할 링크 URL을 입력해 주세요. (선택사항, 없으면 'skip')" + cancelHint
	default:
		return "Step 5/5: 배너 순서를 입력해 주세요. (숫자가 작을수록 먼저 표시, 기본값 0)" + cancelHint
	}
}

func (f *BannerCreateFlow) Cancelled() string {
	return "❌ 배너 등록이 취소되었습니다."
}

func (f *BannerCreateFlow) Advance(ctx context.Context, input string) Result {
	switch f.step {
	case bannerStepImageURL:
		url, err := validate.HTTPURL(input)
		if err != nil {
			return Result{Reply: "올바른 URL 형식이 아닙니다. http:// 또는 https:// 로 시작하는 URL을 입력해 주세요."}
		}
		f.draft.ImageURL = url
	case bannerStepTitle:
		f.draft.Title = validate.Optional(input)
	case bannerStepDescription:
		f.draft.Description = validate.Optional(input)
	case bannerStepLinkURL:
		link, err := validate.OptionalHTTPURL(input)
		if err != nil {
			return Result{Reply: "올바른 URL 형식이 아닙니다. http:// 또는 https:// 로 시작하는 URL을 입력하거나 'skip' 을 입력해 주세요."}
		}
		f.draft.LinkURL = link
	case bannerStepOrderNum:
		// Order falls back to 0 on parse failure instead of re-prompting.
		f.draft.OrderNum = validate.IntOrDefault(input, 0)

		reply, err := f.commit(ctx, &f.draft)
		if err != nil {
			return Result{Reply: "❌ 배너 등록 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", Done: true}
		}
		return Result{Reply: reply, Done: true}
	}

	f.step++
	return Result{Reply: f.Prompt()}
}
