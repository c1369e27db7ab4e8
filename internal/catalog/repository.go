package catalog

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetActiveItem(ctx context.Context, id uint) (*Item, error)
	GetActivePaymentMethod(ctx context.Context, id uint) (*PaymentMethod, error)
	ListActiveItems(ctx context.Context) ([]*Item, error)
	ListActivePaymentMethods(ctx context.Context) ([]*PaymentMethod, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActiveItem(ctx context.Context, id uint) (*Item, error) {
	var it Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, price, active
		FROM items
		WHERE id = $1 AND active = TRUE
	`, id).Scan(&it.ID, &it.Code, &it.Name, &it.Price, &it.Active)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	return &it, nil
}

func (r *repository) GetActivePaymentMethod(ctx context.Context, id uint) (*PaymentMethod, error) {
	var pm PaymentMethod
	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, name, kind, active
		FROM payment_methods
		WHERE id = $1 AND active = TRUE
	`, id).Scan(&pm.ID, &pm.Code, &pm.Name, &pm.Kind, &pm.Active)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pm, nil
}

func (r *repository) ListActiveItems(ctx context.Context) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, price, active
		FROM items
		WHERE active = TRUE
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Price, &it.Active); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}

	return items, rows.Err()
}

func (r *repository) ListActivePaymentMethods(ctx context.Context) ([]*PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, kind, active
		FROM payment_methods
		WHERE active = TRUE
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*PaymentMethod
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.Code, &pm.Name, &pm.Kind, &pm.Active); err != nil {
			return nil, err
		}
		methods = append(methods, &pm)
	}

	return methods, rows.Err()
}
