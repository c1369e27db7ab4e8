package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

var ErrAccountNotFound = errors.New("account not found")

type Repository interface {
	Create(ctx context.Context, email, passwordHash, role string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uint) (*Account, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, passwordHash, role string) (*Account, error) {
	a := &Account{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, passwordHash, role).Scan(&a.ID, &a.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return a, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, total_spent, created_at
		FROM accounts
		WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.TotalSpent, &a.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Account, error) {
	var a Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, total_spent, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.TotalSpent, &a.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}
