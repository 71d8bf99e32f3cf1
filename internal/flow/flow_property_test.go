package flow

import (
	"context"
	"strconv"
	"testing"

	"pgregory.net/rapid"
)

// TestRoomCreateCommitRequiresAllFields checks that no matter how invalid
// inputs are interleaved with valid ones, the commit runs exactly once and
// only after all six fields were accepted.
func TestRoomCreateCommitRequiresAllFields(t *testing.T) {
	valid := []string{"Room A", "https://pokernow.club/games/x", "1/2", "10,000", "매일 21:00", "없음"}

	rapid.Check(t, func(t *rapid.T) {
		commits := 0
		f := NewRoomCreate(func(context.Context, *RoomDraft) (string, error) {
			commits++
			return "ok", nil
		})
		ctx := context.Background()

		accepted := 0
		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps && accepted < len(valid); i++ {
			if rapid.Bool().Draw(t, "useValid") {
				res := f.Advance(ctx, valid[accepted])
				accepted++
				if accepted < len(valid) && res.Done {
					t.Fatalf("flow finished after %d accepted fields", accepted)
				}
			} else if accepted < len(valid)-1 {
				// The description step accepts anything, so garbage only
				// goes to the strict steps. The URL step also rejects
				// non-empty text without an http prefix.
				var bad string
				if accepted == 1 {
					bad = rapid.SampledFrom([]string{"", "www.x.com", "not-a-url"}).Draw(t, "badURL")
				} else {
					bad = rapid.SampledFrom([]string{"", "   "}).Draw(t, "badText")
				}
				res := f.Advance(ctx, bad)
				if res.Done {
					t.Fatalf("flow finished on rejected input %q", bad)
				}
			}
			if commits > 0 && accepted < len(valid) {
				t.Fatalf("commit ran with only %d of %d fields accepted", accepted, len(valid))
			}
		}

		if accepted == len(valid) && commits != 1 {
			t.Fatalf("commit ran %d times after full input, want 1", commits)
		}
		if accepted < len(valid) && commits != 0 {
			t.Fatalf("commit ran %d times before full input", commits)
		}
	})
}

// TestBannerOrderParseFallback checks the banner order-number policy: any
// input commits, with non-integers mapping to order 0.
func TestBannerOrderParseFallback(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var got *BannerDraft
		f := NewBannerCreate(func(_ context.Context, d *BannerDraft) (string, error) {
			got = d
			return "ok", nil
		})
		ctx := context.Background()
		f.Advance(ctx, "http://img")
		f.Advance(ctx, "skip")
		f.Advance(ctx, "skip")
		f.Advance(ctx, "skip")

		if rapid.Bool().Draw(t, "numeric") {
			n := rapid.IntRange(-1000, 1000).Draw(t, "order")
			res := f.Advance(ctx, strconv.Itoa(n))
			if !res.Done || got == nil || got.OrderNum != n {
				t.Fatalf("numeric order %d not committed as-is", n)
			}
		} else {
			junk := rapid.StringMatching(`[a-zA-Z가-힣 ]{1,10}`).Draw(t, "junk")
			res := f.Advance(ctx, junk)
			if !res.Done || got == nil || got.OrderNum != 0 {
				t.Fatalf("junk order %q should commit with default 0", junk)
			}
		}
	})
}
