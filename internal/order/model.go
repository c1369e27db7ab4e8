package order

import (
	"time"

	"topupin-be/internal/payment"
)

type Status string

const (
	StatusPendingPayment   Status = "pending_payment"
	StatusPaymentSubmitted Status = "payment_submitted"
)

// PendingWindow is how long a pending order stays payable after placement.
const PendingWindow = time.Hour

// PendingOrder is the in-memory reservation of a purchase intent. It
// lives in the Store from placement until completion, cancellation or
// process restart; "completed" and "cancelled" are exits, never states.
type PendingOrder struct {
	OrderCode string

	// AccountID is nil for guest checkout.
	AccountID *uint

	// In-game recipient.
	GameUserID   string
	GameServer   string
	GameNickname string

	// Catalog snapshot taken at order time; must not drift if the
	// catalog changes later.
	ItemID   uint
	ItemCode string
	ItemName string

	PaymentMethodID   uint
	PaymentMethodCode string
	PaymentMethodName string
	PaymentKind       payment.Kind

	SubtotalAmount int64
	PromoCode      string
	PromoDiscount  int64
	TotalAmount    int64

	ContactWhatsapp string

	Status Status

	// Proof-of-payment artifacts uploaded by the admin side-channel.
	// Exactly one channel is relevant per payment kind.
	QrisImageData         string
	MinimarketPaymentCode string

	PaymentConfirmedByUser bool
	PaymentConfirmedAt     *time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the payment window has closed. Expiry is
// lazy: an expired order still occupies the store until something
// removes it.
func (o *PendingOrder) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

func (o *PendingOrder) clone() *PendingOrder {
	c := *o
	return &c
}

// DurableOrder is the permanent record created by the commit workflow.
type DurableOrder struct {
	ID        uint
	OrderCode string
	AccountID *uint

	GameUserID   string
	GameServer   string
	GameNickname string

	ItemID   uint
	ItemCode string
	ItemName string

	PaymentMethodID   uint
	PaymentMethodCode string
	PaymentMethodName string
	PaymentKind       payment.Kind

	SubtotalAmount int64
	PromoCode      string
	PromoDiscount  int64
	TotalAmount    int64

	ContactWhatsapp string

	Status string

	// CreatedAt is back-dated to the pending order's creation time so
	// reporting keeps its chronological order.
	CreatedAt   time.Time
	CompletedAt time.Time
}

const DurableStatusCompleted = "completed"
