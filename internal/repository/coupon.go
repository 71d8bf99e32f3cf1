package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/pkg/db"
)

// Common errors for coupon operations.
var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponUsed     = errors.New("coupon already used")
)

const couponColumns = `id, user_id, coupon_code, title, description,
	discount_amount, expires_at, is_used, used_at, created_at`

// CouponRepository handles discount coupon persistence.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository creates a new CouponRepository instance.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var coupon model.Coupon
	err := row.Scan(
		&coupon.ID,
		&coupon.UserID,
		&coupon.CouponCode,
		&coupon.Title,
		&coupon.Description,
		&coupon.DiscountAmount,
		&coupon.ExpiresAt,
		&coupon.IsUsed,
		&coupon.UsedAt,
		&coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Issue inserts one coupon for one user, creating the user row first if it
// does not exist yet. Both statements run in a single transaction so a
// failed issuance never leaves an orphan user bump or half-written coupon.
func (r *CouponRepository) Issue(ctx context.Context, coupon *model.Coupon) (*model.Coupon, error) {
	var issued *model.Coupon
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (user_id, created_at)
			VALUES ($1, NOW())
			ON CONFLICT (user_id) DO NOTHING
		`, coupon.UserID)
		if err != nil {
			return fmt.Errorf("failed to ensure user: %w", err)
		}

		issued, err = scanCoupon(tx.QueryRow(ctx, `
			INSERT INTO coupons (user_id, coupon_code, title, description,
				discount_amount, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING `+couponColumns,
			coupon.UserID,
			coupon.CouponCode,
			coupon.Title,
			coupon.Description,
			coupon.DiscountAmount,
			coupon.ExpiresAt,
		))
		if err != nil {
			return fmt.Errorf("failed to insert coupon: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// GetByCode retrieves a coupon by its code.
// Returns ErrCouponNotFound if no such code exists.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE coupon_code = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

// ListByUser returns all coupons for a user regardless of status, newest
// first.
func (r *CouponRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}
	return coupons, nil
}

// MarkUsed transitions a coupon from unused to used exactly once, stamping
// used_at. The guard in the WHERE clause makes a double redeem report
// ErrCouponUsed instead of double-marking.
func (r *CouponRepository) MarkUsed(ctx context.Context, code string, usedAt time.Time) (*model.Coupon, error) {
	const query = `
		UPDATE coupons SET is_used = TRUE, used_at = $2
		WHERE coupon_code = $1 AND is_used = FALSE
		RETURNING ` + couponColumns

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code, usedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing code from an already-used one.
			if _, getErr := r.GetByCode(ctx, code); getErr != nil {
				return nil, getErr
			}
			return nil, ErrCouponUsed
		}
		return nil, fmt.Errorf("failed to mark coupon used: %w", err)
	}
	return coupon, nil
}
