package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/validate"
)

// RedeemStatus is the outcome of a redemption attempt. The four outcomes
// are user-visible and must stay distinct.
type RedeemStatus int

const (
	RedeemOK RedeemStatus = iota
	RedeemNotFound
	RedeemAlreadyUsed
	RedeemExpired
)

// RedeemResult carries the outcome plus the coupon where one exists (used
// and expired outcomes include it so the prior usage time or expiry can be
// reported).
type RedeemResult struct {
	Status RedeemStatus
	Coupon *model.Coupon
}

// IssueFailure records one failed insertion in a batch issuance.
type IssueFailure struct {
	UserID int64
	Err    error
}

// IssueReport states exactly which insertions completed and which failed;
// a partial failure never silently loses track of issued coupons.
type IssueReport struct {
	Issued []*model.Coupon
	Failed []IssueFailure
}

// CouponService handles coupon issuance and redemption.
type CouponService struct {
	couponRepo *repository.CouponRepository
	now        func() time.Time
}

// NewCouponService creates a new CouponService instance.
func NewCouponService(couponRepo *repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo, now: time.Now}
}

// IssueBatch issues one coupon per target user. Each user gets a fresh
// random code; validityDays of 0 means the coupons never expire. Users that
// do not exist yet are created as part of the per-coupon transaction.
func (s *CouponService) IssueBatch(ctx context.Context, targets []int64, title, description string, amount, validityDays int) *IssueReport {
	var expiresAt *time.Time
	if validityDays > 0 {
		t := s.now().AddDate(0, 0, validityDays)
		expiresAt = &t
	}

	report := &IssueReport{}
	for _, userID := range targets {
		coupon, err := s.couponRepo.Issue(ctx, &model.Coupon{
			UserID:         userID,
			CouponCode:     validate.CouponCode(),
			Title:          title,
			Description:    description,
			DiscountAmount: amount,
			ExpiresAt:      expiresAt,
		})
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("Coupon issuance failed")
			report.Failed = append(report.Failed, IssueFailure{UserID: userID, Err: err})
			continue
		}
		report.Issued = append(report.Issued, coupon)
	}

	log.Info().
		Int("issued", len(report.Issued)).
		Int("failed", len(report.Failed)).
		Str("title", title).
		Msg("Coupon batch issued")
	return report
}

// Redeem resolves a coupon code in order: not found, already used, expired,
// then mark used with a used_at stamp. Redeeming a valid code twice yields
// RedeemAlreadyUsed the second time.
func (s *CouponService) Redeem(ctx context.Context, code string) (*RedeemResult, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return &RedeemResult{Status: RedeemNotFound}, nil
		}
		return nil, err
	}

	if coupon.IsUsed {
		return &RedeemResult{Status: RedeemAlreadyUsed, Coupon: coupon}, nil
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return &RedeemResult{Status: RedeemExpired, Coupon: coupon}, nil
	}

	used, err := s.couponRepo.MarkUsed(ctx, code, s.now())
	if err != nil {
		// A concurrent redeem can win between the read and the update.
		if errors.Is(err, repository.ErrCouponUsed) {
			coupon, getErr := s.couponRepo.GetByCode(ctx, code)
			if getErr != nil {
				return nil, getErr
			}
			return &RedeemResult{Status: RedeemAlreadyUsed, Coupon: coupon}, nil
		}
		return nil, err
	}

	log.Info().Str("code", code).Int64("user_id", used.UserID).Msg("Coupon redeemed")
	return &RedeemResult{Status: RedeemOK, Coupon: used}, nil
}

// ListByUser returns every coupon a user holds, regardless of status.
func (s *CouponService) ListByUser(ctx context.Context, userID int64) ([]*model.Coupon, error) {
	return s.couponRepo.ListByUser(ctx, userID)
}
