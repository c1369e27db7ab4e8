package promo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type Repository interface {
	GetActiveByCode(ctx context.Context, code string) (*Promo, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveByCode(ctx context.Context, code string) (*Promo, error) {
	var p Promo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, type, value, min_subtotal, max_discount,
		       starts_at, ends_at, active
		FROM promos
		WHERE code = $1 AND active = TRUE
	`, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&p.ID,
		&p.Code,
		&p.Type,
		&p.Value,
		&p.MinSubtotal,
		&p.MaxDiscount,
		&p.StartsAt,
		&p.EndsAt,
		&p.Active,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
