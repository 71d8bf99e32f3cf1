// Package service provides business logic implementations.
// Property-based tests for coupon redemption resolution.
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
)

// resolveRedeem mirrors the decision order in CouponService.Redeem: a code
// that does not resolve is not-found; a used coupon stays used even when it
// is also past its expiry; expiry only applies to unused coupons; only a
// live unused coupon redeems.
func resolveRedeem(coupon *model.Coupon, now time.Time) RedeemStatus {
	if coupon == nil {
		return RedeemNotFound
	}
	if coupon.IsUsed {
		return RedeemAlreadyUsed
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return RedeemExpired
	}
	return RedeemOK
}

func TestRedeemResolutionOrderProperty(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		exists := rapid.Bool().Draw(t, "exists")
		if !exists {
			assert.Equal(t, RedeemNotFound, resolveRedeem(nil, base))
			return
		}

		coupon := &model.Coupon{
			IsUsed: rapid.Bool().Draw(t, "isUsed"),
		}
		if rapid.Bool().Draw(t, "hasExpiry") {
			offset := rapid.Int64Range(-1000, 1000).Draw(t, "expiryOffsetHours")
			expiry := base.Add(time.Duration(offset) * time.Hour)
			coupon.ExpiresAt = &expiry
		}

		status := resolveRedeem(coupon, base)

		// A used coupon always reports used, even when also expired.
		if coupon.IsUsed {
			assert.Equal(t, RedeemAlreadyUsed, status)
			return
		}
		// Expiry only matters for unused coupons, and only once passed.
		if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(base) {
			assert.Equal(t, RedeemExpired, status)
			return
		}
		assert.Equal(t, RedeemOK, status)
	})
}

func TestRedeemExpiryBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A coupon expiring exactly now is still redeemable; Before is strict.
	atNow := now
	assert.Equal(t, RedeemOK, resolveRedeem(&model.Coupon{ExpiresAt: &atNow}, now))

	past := now.Add(-time.Second)
	assert.Equal(t, RedeemExpired, resolveRedeem(&model.Coupon{ExpiresAt: &past}, now))

	// No expiry means the coupon never expires.
	assert.Equal(t, RedeemOK, resolveRedeem(&model.Coupon{}, now))
}
