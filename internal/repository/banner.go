package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
)

// ErrBannerNotFound is returned when no banner row exists for the given id.
var ErrBannerNotFound = errors.New("banner not found")

const bannerColumns = `id, image_url, title, description, link_url,
	order_num, status, created_at`

// BannerRepository handles promotional banner persistence.
type BannerRepository struct {
	pool *pgxpool.Pool
}

// NewBannerRepository creates a new BannerRepository instance.
func NewBannerRepository(pool *pgxpool.Pool) *BannerRepository {
	return &BannerRepository{pool: pool}
}

func scanBanner(row pgx.Row) (*model.Banner, error) {
	var banner model.Banner
	err := row.Scan(
		&banner.ID,
		&banner.ImageURL,
		&banner.Title,
		&banner.Description,
		&banner.LinkURL,
		&banner.OrderNum,
		&banner.Status,
		&banner.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

// Create inserts a new banner with status active.
func (r *BannerRepository) Create(ctx context.Context, banner *model.Banner) (*model.Banner, error) {
	const query = `
		INSERT INTO banners (image_url, title, description, link_url, order_num, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + bannerColumns

	created, err := scanBanner(r.pool.QueryRow(ctx, query,
		banner.ImageURL,
		banner.Title,
		banner.Description,
		banner.LinkURL,
		banner.OrderNum,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create banner: %w", err)
	}
	return created, nil
}

func (r *BannerRepository) list(ctx context.Context, query string, args ...any) ([]*model.Banner, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	var banners []*model.Banner
	for rows.Next() {
		banner, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, banner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banners: %w", err)
	}
	return banners, nil
}

// ListActive returns active banners ordered by (order_num asc, id asc).
func (r *BannerRepository) ListActive(ctx context.Context) ([]*model.Banner, error) {
	const query = `SELECT ` + bannerColumns + ` FROM banners
		WHERE status = $1 ORDER BY order_num ASC, id ASC`
	return r.list(ctx, query, model.StatusActive)
}

// ListAll returns every banner regardless of status, same ordering.
func (r *BannerRepository) ListAll(ctx context.Context) ([]*model.Banner, error) {
	const query = `SELECT ` + bannerColumns + ` FROM banners
		ORDER BY order_num ASC, id ASC`
	return r.list(ctx, query)
}

// ToggleStatus flips a banner between active and inactive, returning the
// new status.
func (r *BannerRepository) ToggleStatus(ctx context.Context, id int64) (string, error) {
	const query = `
		UPDATE banners
		SET status = CASE WHEN status = $2 THEN $3 ELSE $2 END
		WHERE id = $1
		RETURNING status
	`

	var status string
	err := r.pool.QueryRow(ctx, query, id, model.StatusActive, model.StatusInactive).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBannerNotFound
		}
		return "", fmt.Errorf("failed to toggle banner status: %w", err)
	}
	return status, nil
}

// SetStatus flips a banner between active and inactive.
func (r *BannerRepository) SetStatus(ctx context.Context, id int64, status string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE banners SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set banner status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBannerNotFound
	}
	return nil
}

// Delete removes a banner.
func (r *BannerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBannerNotFound
	}
	return nil
}
