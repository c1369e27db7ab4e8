package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"topupin-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres error codes surfaced when an optional bookkeeping table or
// column is absent in a deployment.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// Execer is the slice of *sql.Tx / *sql.DB the recorder writes through.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder applies the bookkeeping side effects of an order commit: a
// transaction-history row and the account running total. Both are
// optional per deployment; capabilities are probed once (outside any
// transaction, so a failed probe cannot poison the commit tx) and
// cached for the process lifetime.
type Recorder struct {
	db   *sql.DB
	once sync.Once

	hasHistory bool
	hasBalance bool
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// schemaAbsent reports whether err means the table or column does not exist.
func schemaAbsent(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == pgUndefinedTable || code == pgUndefinedColumn
}

// probe runs the capability checks. Zero-row selects are enough to learn
// whether the table/column exists without touching data.
func (r *Recorder) probe(ctx context.Context) {
	log := logger.FromCtx(ctx)

	r.hasHistory = true
	r.hasBalance = true

	if rows, err := r.db.QueryContext(ctx, `SELECT account_id, order_code, amount FROM account_transactions LIMIT 0`); err != nil {
		if schemaAbsent(err) {
			r.hasHistory = false
			log.Warn("transaction history disabled: schema not present", zap.Error(err))
		} else {
			log.Warn("transaction history capability probe failed", zap.Error(err))
		}
	} else {
		rows.Close()
	}

	if rows, err := r.db.QueryContext(ctx, `SELECT total_spent FROM accounts LIMIT 0`); err != nil {
		if schemaAbsent(err) {
			r.hasBalance = false
			log.Warn("account balance tracking disabled: schema not present", zap.Error(err))
		} else {
			log.Warn("account balance capability probe failed", zap.Error(err))
		}
	} else {
		rows.Close()
	}
}

// Apply writes the ledger entry and the balance increment through ex
// (normally the commit transaction). Statements whose schema is absent
// are skipped entirely; errors from supported statements are returned so
// the caller can roll back.
func (r *Recorder) Apply(ctx context.Context, ex Execer, accountID uint, orderCode string, amount int64) error {
	r.once.Do(func() { r.probe(ctx) })

	if r.hasHistory {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO account_transactions (account_id, order_code, amount)
			VALUES ($1, $2, $3)
		`, accountID, orderCode, amount)
		if err != nil {
			return err
		}
	}

	if r.hasBalance {
		_, err := ex.ExecContext(ctx, `
			UPDATE accounts
			SET total_spent = total_spent + $1
			WHERE id = $2
		`, amount, accountID)
		if err != nil {
			return err
		}
	}

	return nil
}
