package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
)

func TestRoomCreateFlowHappyPath(t *testing.T) {
	var committed *RoomDraft
	f := NewRoomCreate(func(_ context.Context, d *RoomDraft) (string, error) {
		committed = d
		return "created", nil
	})

	ctx := context.Background()
	inputs := []string{"A", "http://x", "1/2", "100", "9pm"}
	for _, in := range inputs {
		res := f.Advance(ctx, in)
		assert.False(t, res.Done, "input %q should not finish the flow", in)
		require.Nil(t, committed, "commit must not run before the final step")
	}

	res := f.Advance(ctx, "없음")
	assert.True(t, res.Done)
	assert.Equal(t, "created", res.Reply)

	require.NotNil(t, committed)
	assert.Equal(t, "A", committed.RoomName)
	assert.Equal(t, "http://x", committed.RoomURL)
	assert.Equal(t, "1/2", committed.Blinds)
	assert.Equal(t, "100", committed.MinBuyin)
	assert.Equal(t, "9pm", committed.GameTime)
	assert.Nil(t, committed.Description, "skip sentinel maps description to absent")
}

func TestRoomCreateFlowRejectsBadURL(t *testing.T) {
	commits := 0
	f := NewRoomCreate(func(context.Context, *RoomDraft) (string, error) {
		commits++
		return "", nil
	})

	ctx := context.Background()
	f.Advance(ctx, "A")

	urlPrompt := f.Prompt()
	for _, bad := range []string{"www.pokernow.club", "ftp://x", "not a url"} {
		res := f.Advance(ctx, bad)
		assert.False(t, res.Done)
		assert.Equal(t, urlPrompt, f.Prompt(), "flow must stay on the URL step")
	}

	res := f.Advance(ctx, "https://www.pokernow.club/games/abc")
	assert.False(t, res.Done)
	assert.NotEqual(t, urlPrompt, f.Prompt())
	assert.Zero(t, commits)
}

func TestRoomCreateFlowCommitFailure(t *testing.T) {
	f := NewRoomCreate(func(context.Context, *RoomDraft) (string, error) {
		return "", errors.New("storage down")
	})

	ctx := context.Background()
	for _, in := range []string{"A", "http://x", "1/2", "100", "9pm"} {
		f.Advance(ctx, in)
	}

	res := f.Advance(ctx, "skip")
	assert.True(t, res.Done, "commit failure terminates the flow")
	assert.Contains(t, res.Reply, "오류")
}

func TestBannerCreateFlowOrderDefault(t *testing.T) {
	var committed *BannerDraft
	f := NewBannerCreate(func(_ context.Context, d *BannerDraft) (string, error) {
		committed = d
		return "ok", nil
	})

	ctx := context.Background()
	f.Advance(ctx, "https://example.com/b.png")
	f.Advance(ctx, "skip")
	f.Advance(ctx, "없음")
	f.Advance(ctx, "-")

	// Bad order input falls back to 0 instead of re-prompting.
	res := f.Advance(ctx, "abc")
	assert.True(t, res.Done)
	require.NotNil(t, committed)
	assert.Equal(t, 0, committed.OrderNum)
	assert.Nil(t, committed.Title)
	assert.Nil(t, committed.Description)
	assert.Nil(t, committed.LinkURL)
}

func TestBannerCreateFlowRejectsBadLinkURL(t *testing.T) {
	f := NewBannerCreate(func(context.Context, *BannerDraft) (string, error) { return "ok", nil })

	ctx := context.Background()
	f.Advance(ctx, "http://img")
	f.Advance(ctx, "title")
	f.Advance(ctx, "desc")

	res := f.Advance(ctx, "example.com")
	assert.False(t, res.Done)
	assert.Contains(t, res.Reply, "URL")

	res = f.Advance(ctx, "skip")
	assert.False(t, res.Done, "skip is accepted for the optional link")
}

func TestCouponIssueFlowAmountReprompt(t *testing.T) {
	var committed *CouponDraft
	f := NewCouponIssue(func(_ context.Context, d *CouponDraft) (string, error) {
		committed = d
		return "issued", nil
	})

	ctx := context.Background()
	f.Advance(ctx, "123, 456")
	f.Advance(ctx, "가입 쿠폰")
	f.Advance(ctx, "신규 가입 감사 쿠폰")

	for _, bad := range []string{"abc", "-5", "0"} {
		res := f.Advance(ctx, bad)
		assert.False(t, res.Done, "amount %q must re-prompt", bad)
	}
	f.Advance(ctx, "5000")

	res := f.Advance(ctx, "-1")
	assert.False(t, res.Done, "negative validity must re-prompt")

	res = f.Advance(ctx, "0")
	assert.True(t, res.Done)
	require.NotNil(t, committed)
	assert.Equal(t, []int64{123, 456}, committed.TargetIDs)
	assert.Equal(t, 5000, committed.Amount)
	assert.Equal(t, 0, committed.ValidityDays)
}

func TestEventCreateFlow(t *testing.T) {
	var committed *EventDraft
	f := NewEventCreate(func(_ context.Context, d *EventDraft) (string, error) {
		committed = d
		return "ok", nil
	})

	ctx := context.Background()
	f.Advance(ctx, "시즌 오픈")
	f.Advance(ctx, "이번 주말 시즌이 시작됩니다.")
	res := f.Advance(ctx, "skip")

	assert.True(t, res.Done)
	require.NotNil(t, committed)
	assert.Equal(t, "시즌 오픈", committed.Title)
	assert.Nil(t, committed.ImageURL)
}

func TestRoomEditFlowPlayerCountRange(t *testing.T) {
	room := &model.Room{ID: 7, RoomName: "A", MaxPlayers: 10}
	var gotCount int
	f := NewRoomEdit(room, FieldCurrentPlayers, RoomEditCommits{
		CurrentPlayers: func(_ context.Context, _ int64, n int) (string, error) {
			gotCount = n
			return "ok", nil
		},
	})

	ctx := context.Background()
	for _, bad := range []string{"abc", "-1", "11"} {
		res := f.Advance(ctx, bad)
		assert.False(t, res.Done, "input %q must re-prompt", bad)
	}

	res := f.Advance(ctx, "10")
	assert.True(t, res.Done)
	assert.Equal(t, 10, gotCount)
}

func TestRoomEditFlowContactStripsAt(t *testing.T) {
	room := &model.Room{ID: 7, RoomName: "A", MaxPlayers: 10}
	var gotValue *string
	f := NewRoomEdit(room, FieldContactTG, RoomEditCommits{
		Field: func(_ context.Context, _ int64, _ string, v *string) (string, error) {
			gotValue = v
			return "ok", nil
		},
	})

	res := f.Advance(context.Background(), "@ttpoker_admin")
	assert.True(t, res.Done)
	require.NotNil(t, gotValue)
	assert.Equal(t, "ttpoker_admin", *gotValue)
}

func TestStoreIsolationAndCancel(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	commits := 0
	newFlow := func() Flow {
		return NewRoomCreate(func(context.Context, *RoomDraft) (string, error) {
			commits++
			return "ok", nil
		})
	}

	store.Begin(1, newFlow())
	store.Begin(2, newFlow())

	// Admin 1 progresses; admin 2's draft is untouched.
	res, ok := store.Advance(ctx, 1, "Room A")
	require.True(t, ok)
	assert.Contains(t, res.Reply, "Step 2/6")

	res, ok = store.Advance(ctx, 2, "Room B")
	require.True(t, ok)
	assert.Contains(t, res.Reply, "Step 2/6")

	// Cancel discards admin 1's draft from mid-flow without persisting.
	msg, ok := store.Cancel(1)
	assert.True(t, ok)
	assert.Contains(t, msg, "취소")
	assert.False(t, store.Active(1))
	assert.True(t, store.Active(2))
	assert.Zero(t, commits)

	_, ok = store.Advance(ctx, 1, "more text")
	assert.False(t, ok, "cancelled session no longer accepts input")

	_, ok = store.Cancel(1)
	assert.False(t, ok, "cancel without a session reports inactive")
}

func TestStoreBeginReplacesDraft(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.Begin(1, NewRoomCreate(func(context.Context, *RoomDraft) (string, error) { return "room", nil }))
	store.Advance(ctx, 1, "half-done")

	prompt := store.Begin(1, NewEventCreate(func(context.Context, *EventDraft) (string, error) { return "event", nil }))
	assert.Contains(t, prompt, "이벤트")

	res, ok := store.Advance(ctx, 1, "제목")
	require.True(t, ok)
	assert.Contains(t, res.Reply, "Step 2/3")
}

func TestStoreRemovesSessionOnDone(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.Begin(1, NewCouponRedeem(func(context.Context, string) (string, error) { return "done", nil }))
	res, ok := store.Advance(ctx, 1, "ABCD123456")
	require.True(t, ok)
	assert.True(t, res.Done)
	assert.False(t, store.Active(1))
}
