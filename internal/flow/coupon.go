package flow

import (
	"context"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/validate"
)

// CouponDraft is the transient field set collected by the coupon issue flow.
type CouponDraft struct {
	TargetIDs    []int64
	Title        string
	Description  string
	Amount       int
	ValidityDays int // 0 = never expires
}

const (
	couponStepTargets = iota
	couponStepTitle
	couponStepDescription
	couponStepAmount
	couponStepValidity
)

// CouponIssueFlow collects the five issuance fields one turn at a time and
// commits the whole batch at the end.
type CouponIssueFlow struct {
	step   int
	draft  CouponDraft
	commit func(ctx context.Context, d *CouponDraft) (string, error)
}

// NewCouponIssue starts a coupon issue flow.
func NewCouponIssue(commit func(ctx context.Context, d *CouponDraft) (string, error)) *CouponIssueFlow {
	return &CouponIssueFlow{commit: commit}
}

func (f *CouponIssueFlow) Prompt() string {
	switch f.step {
	case couponStepTargets:
		return "🎟️ 쿠폰 발급\n\n" +
			"Step 1/5: 대상 유저 ID를 입력해 주세요. (쉼표 또는 공백으로 구분)\n" +
			"예: 123456789, 987654321" + cancelHint
	case couponStepTitle:
		return "Step 2/5: 쿠폰 제목을 입력해 주세요.\n예: 신규 가입 할인" + cancelHint
	case couponStepDescription:
		return "Step 3/5: 쿠폰 설명을 입력해 주세요." + cancelHint
	case couponStepAmount:
		return "Step 4/5: 할인 금액을 입력해 주세요. (숫자)" + cancelHint
	default:
		return "Step 5/5: 유효 기간을 일 단위로 입력해 주세요. (0 = 무제한)" + cancelHint
	}
}

func (f *CouponIssueFlow) Cancelled() string {
	return "❌ 쿠폰 발급이 취소되었습니다."
}

func (f *CouponIssueFlow) Advance(ctx context.Context, input string) Result {
	switch f.step {
	case couponStepTargets:
		ids, err := validate.UserIDList(input)
		if err != nil {
			return Result{Reply: "유저 ID 목록 형식이 올바르지 않습니다. 숫자 ID를 쉼표로 구분해 입력해 주세요."}
		}
		f.draft.TargetIDs = ids
	case couponStepTitle:
		title, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "쿠폰 제목을 입력해 주세요."}
		}
		f.draft.Title = title
	case couponStepDescription:
		desc, err := validate.Required(input)
		if err != nil {
			return Result{Reply: "쿠폰 설명을 입력해 주세요."}
		}
		f.draft.Description = desc
	case couponStepAmount:
		amount, err := validate.IntField(input)
		if err != nil || amount <= 0 {
			return Result{Reply: "할인 금액은 0보다 큰 숫자여야 합니다."}
		}
		f.draft.Amount = amount
	case couponStepValidity:
		days, err := validate.IntField(input)
		if err != nil || days < 0 {
			return Result{Reply: "유효 기간은 0 이상의 숫자여야 합니다. (0 = 무제한)"}
		}
		f.draft.ValidityDays = days

		reply, err := f.commit(ctx, &f.draft)
		if err != nil {
			return Result{Reply: "❌ 쿠폰 발급 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", Done: true}
		}
		return Result{Reply: reply, Done: true}
	}

	f.step++
	return Result{Reply: f.Prompt()}
}

// CouponRedeemFlow asks for a coupon code and reports one of the four
// redemption outcomes. The commit maps the outcome to the reply text.
type CouponRedeemFlow struct {
	commit func(ctx context.Context, code string) (string, error)
}

// NewCouponRedeem starts a coupon redeem flow.
func NewCouponRedeem(commit func(ctx context.Context, code string) (string, error)) *CouponRedeemFlow {
	return &CouponRedeemFlow{commit: commit}
}

func (f *CouponRedeemFlow) Prompt() string {
	return "🎟️ 쿠폰 사용 처리\n\n쿠폰 코드를 입력해 주세요. (10자리)" + cancelHint
}

func (f *CouponRedeemFlow) Cancelled() string {
	return "❌ 쿠폰 사용 처리가 취소되었습니다."
}

func (f *CouponRedeemFlow) Advance(ctx context.Context, input string) Result {
	code, err := validate.Required(input)
	if err != nil {
		return Result{Reply: "쿠폰 코드를 입력해 주세요."}
	}

	reply, err := f.commit(ctx, code)
	if err != nil {
		return Result{Reply: "❌ 쿠폰 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.", Done: true}
	}
	return Result{Reply: reply, Done: true}
}
