package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"topupin-be/internal/ledger"
	"topupin-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type Repository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindByCode(ctx context.Context, code string) (*DurableOrder, error)
	// InsertCompleted writes the durable row plus ledger side effects in
	// one transaction. The bool reports whether this call did the insert;
	// (false, nil) means another commit already won and the order is
	// durable regardless.
	InsertCompleted(ctx context.Context, o *PendingOrder) (bool, error)
}

type repository struct {
	db     *sql.DB
	ledger *ledger.Recorder
}

func NewRepository(db *sql.DB, rec *ledger.Recorder) Repository {
	return &repository{db: db, ledger: rec}
}

func (r *repository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE order_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return exists, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*DurableOrder, error) {
	o := &DurableOrder{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_code, account_id, game_user_id, game_server, game_nickname,
			item_id, item_code, item_name,
			payment_method_id, payment_method_code, payment_method_name, payment_kind,
			subtotal_amount, promo_code, promo_discount, total_amount,
			contact_whatsapp, status, created_at, completed_at
		FROM orders
		WHERE order_code = $1
	`, code).Scan(
		&o.ID, &o.OrderCode, &o.AccountID, &o.GameUserID, &o.GameServer, &o.GameNickname,
		&o.ItemID, &o.ItemCode, &o.ItemName,
		&o.PaymentMethodID, &o.PaymentMethodCode, &o.PaymentMethodName, &o.PaymentKind,
		&o.SubtotalAmount, &o.PromoCode, &o.PromoDiscount, &o.TotalAmount,
		&o.ContactWhatsapp, &o.Status, &o.CreatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return o, nil
}

func (r *repository) InsertCompleted(ctx context.Context, o *PendingOrder) (bool, error) {
	log := logger.FromCtx(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			order_code, account_id, game_user_id, game_server, game_nickname,
			item_id, item_code, item_name,
			payment_method_id, payment_method_code, payment_method_name, payment_kind,
			subtotal_amount, promo_code, promo_discount, total_amount,
			contact_whatsapp, status, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
	`,
		o.OrderCode, o.AccountID, o.GameUserID, o.GameServer, o.GameNickname,
		o.ItemID, o.ItemCode, o.ItemName,
		o.PaymentMethodID, o.PaymentMethodCode, o.PaymentMethodName, string(o.PaymentKind),
		o.SubtotalAmount, o.PromoCode, o.PromoDiscount, o.TotalAmount,
		o.ContactWhatsapp, DurableStatusCompleted, o.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			// Another commit already made this order durable. The
			// transaction is aborted anyway, so drop it and treat the
			// operation as already done.
			log.Info("order already durable, treating commit as success",
				zap.String("orderCode", o.OrderCode))
			return false, nil
		}
		return false, fmt.Errorf("failed to insert order: %w", err)
	}

	if o.AccountID != nil {
		if err := r.ledger.Apply(ctx, tx, *o.AccountID, o.OrderCode, o.TotalAmount); err != nil {
			return false, fmt.Errorf("failed to record account ledger: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit order: %w", err)
	}
	committed = true
	return true, nil
}
