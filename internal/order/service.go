package order

import (
	"context"
	"strings"
	"time"

	"topupin-be/internal/catalog"
	"topupin-be/internal/logger"
	"topupin-be/internal/metrics"
	"topupin-be/internal/payment"
	"topupin-be/internal/promo"
	"topupin-be/internal/utils"

	"go.uber.org/zap"
)

// MaxCodeAttempts bounds the unique-code search at placement time.
const MaxCodeAttempts = 200

// CatalogSource is the slice of the catalog the order workflows need.
type CatalogSource interface {
	GetActiveItem(ctx context.Context, id uint) (*catalog.Item, error)
	GetActivePaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error)
}

type PromoSource interface {
	GetActiveByCode(ctx context.Context, code string) (*promo.Promo, error)
}

type PlaceOrderInput struct {
	GameUserID      string
	GameServer      string
	GameNickname    string
	ItemID          uint
	PaymentMethodID uint
	PromoCode       string
	ContactWhatsapp string
	AccountID       *uint
}

type PlacementResult struct {
	Order      *PendingOrder
	InvoiceURL string
}

type ProofInput struct {
	QrisImageData         string
	MinimarketPaymentCode string
}

// InvoiceView is the buyer-facing read model, assembled from the pending
// store first and the durable table as fallback.
type InvoiceView struct {
	OrderCode string

	// TransactionStatus: unpaid, awaiting_verification, expired or done.
	TransactionStatus string
	CanPay            bool
	RemainingSeconds  int64

	AccountID    *uint
	GameUserID   string
	GameServer   string
	GameNickname string

	ItemCode string
	ItemName string

	PaymentMethodCode string
	PaymentMethodName string
	PaymentKind       payment.Kind

	SubtotalAmount int64
	PromoCode      string
	PromoDiscount  int64
	TotalAmount    int64

	ContactWhatsapp string

	PaymentConfirmedByUser bool
	QrisImageData          string
	MinimarketPaymentCode  string

	Instructions []string

	CreatedAt time.Time
	ExpiresAt *time.Time
}

const (
	TxStatusUnpaid   = "unpaid"
	TxStatusAwaiting = "awaiting_verification"
	TxStatusExpired  = "expired"
	TxStatusDone     = "done"
)

// AdminOrderView decorates a pending order with the flags the admin
// queue renders.
type AdminOrderView struct {
	*PendingOrder
	Expired       bool
	ProofUploaded bool
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error)
	GetInvoice(ctx context.Context, code string) (*InvoiceView, error)
	ConfirmPayment(ctx context.Context, code string) (*PendingOrder, error)
	CancelOrder(ctx context.Context, code string) error
	AttachProof(ctx context.Context, code string, input ProofInput) (*PendingOrder, error)
	CompleteOrder(ctx context.Context, code string) error
	ListPending(ctx context.Context) []*AdminOrderView
}

type service struct {
	store   *Store
	repo    Repository
	catalog CatalogSource
	promos  PromoSource
	window  time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewService(store *Store, repo Repository, cat CatalogSource, promos PromoSource, window time.Duration) Service {
	if window <= 0 {
		window = PendingWindow
	}
	return &service{
		store:   store,
		repo:    repo,
		catalog: cat,
		promos:  promos,
		window:  window,
		now:     time.Now,
	}
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if strings.TrimSpace(input.GameUserID) == "" {
		return &FieldError{Field: "gameUserId", Message: "game user ID is required"}
	}
	if strings.TrimSpace(input.GameServer) == "" {
		return &FieldError{Field: "gameServer", Message: "game server is required"}
	}
	if input.ItemID == 0 {
		return &FieldError{Field: "itemId", Message: "item is required"}
	}
	if input.PaymentMethodID == 0 {
		return &FieldError{Field: "paymentMethodId", Message: "payment method is required"}
	}
	if !utils.ValidWhatsappNumber(input.ContactWhatsapp) {
		return &FieldError{Field: "contactWhatsapp", Message: "invalid WhatsApp number"}
	}
	return nil
}

// resolvePromo validates eligibility and returns the discount for subtotal.
func (s *service) resolvePromo(ctx context.Context, code string, subtotal int64) (string, int64, error) {
	p, err := s.promos.GetActiveByCode(ctx, code)
	if err != nil {
		return "", 0, err
	}

	now := s.now()
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return "", 0, promo.ErrPromoNotStarted
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return "", 0, promo.ErrPromoEnded
	}
	if subtotal < p.MinSubtotal {
		return "", 0, promo.ErrPromoMinSubtotal
	}

	return p.Code, p.Discount(subtotal), nil
}

// generateUniqueCode draws candidates until one collides with neither
// the pending store nor the durable table.
func (s *service) generateUniqueCode(ctx context.Context, itemName, itemCode string) (string, error) {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := GenerateCode(itemName, itemCode)
		if err != nil {
			return "", err
		}
		if s.store.Has(code) {
			metrics.CodeRetries.Inc()
			continue
		}
		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if exists {
			metrics.CodeRetries.Inc()
			continue
		}
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error) {
	log := logger.FromCtx(ctx)

	// 1. Validate buyer input.
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	// 2. Resolve the catalog; inactive rows are indistinguishable from
	// absent ones on purpose.
	item, err := s.catalog.GetActiveItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	method, err := s.catalog.GetActivePaymentMethod(ctx, input.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	// 3. Price with the optional promo.
	subtotal := item.Price
	promoCode, discount := "", int64(0)
	if strings.TrimSpace(input.PromoCode) != "" {
		promoCode, discount, err = s.resolvePromo(ctx, input.PromoCode, subtotal)
		if err != nil {
			return nil, err
		}
	}
	total := subtotal - discount

	// 4. Reserve a unique order code.
	code, err := s.generateUniqueCode(ctx, item.Name, item.Code)
	if err != nil {
		return nil, err
	}

	// 5. Snapshot everything into the pending store.
	now := s.now()
	o := &PendingOrder{
		OrderCode:         code,
		AccountID:         input.AccountID,
		GameUserID:        strings.TrimSpace(input.GameUserID),
		GameServer:        strings.TrimSpace(input.GameServer),
		GameNickname:      strings.TrimSpace(input.GameNickname),
		ItemID:            item.ID,
		ItemCode:          item.Code,
		ItemName:          item.Name,
		PaymentMethodID:   method.ID,
		PaymentMethodCode: method.Code,
		PaymentMethodName: method.Name,
		PaymentKind:       method.Kind,
		SubtotalAmount:    subtotal,
		PromoCode:         promoCode,
		PromoDiscount:     discount,
		TotalAmount:       total,
		ContactWhatsapp:   input.ContactWhatsapp,
		Status:            StatusPendingPayment,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.window),
	}
	s.store.Save(o)
	metrics.OrdersPlaced.Inc()

	log.Info("order placed",
		zap.String("orderCode", code),
		zap.String("itemCode", item.Code),
		zap.String("paymentKind", string(method.Kind)),
		zap.Int64("total", total))

	return &PlacementResult{Order: o, InvoiceURL: "/invoice/" + code}, nil
}

func (s *service) GetInvoice(ctx context.Context, code string) (*InvoiceView, error) {
	if o := s.store.Get(code); o != nil {
		return s.pendingInvoice(o), nil
	}

	d, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return durableInvoice(d), nil
}

func (s *service) pendingInvoice(o *PendingOrder) *InvoiceView {
	now := s.now()
	v := &InvoiceView{
		OrderCode:              o.OrderCode,
		AccountID:              o.AccountID,
		GameUserID:             o.GameUserID,
		GameServer:             o.GameServer,
		GameNickname:           o.GameNickname,
		ItemCode:               o.ItemCode,
		ItemName:               o.ItemName,
		PaymentMethodCode:      o.PaymentMethodCode,
		PaymentMethodName:      o.PaymentMethodName,
		PaymentKind:            o.PaymentKind,
		SubtotalAmount:         o.SubtotalAmount,
		PromoCode:              o.PromoCode,
		PromoDiscount:          o.PromoDiscount,
		TotalAmount:            o.TotalAmount,
		ContactWhatsapp:        o.ContactWhatsapp,
		PaymentConfirmedByUser: o.PaymentConfirmedByUser,
		QrisImageData:          o.QrisImageData,
		MinimarketPaymentCode:  o.MinimarketPaymentCode,
		Instructions:           payment.Instructions(o.PaymentKind),
		CreatedAt:              o.CreatedAt,
	}
	expiresAt := o.ExpiresAt
	v.ExpiresAt = &expiresAt

	switch {
	case o.IsExpired(now):
		v.TransactionStatus = TxStatusExpired
	case o.Status == StatusPaymentSubmitted:
		v.TransactionStatus = TxStatusAwaiting
	default:
		v.TransactionStatus = TxStatusUnpaid
		v.CanPay = true
		v.RemainingSeconds = int64(o.ExpiresAt.Sub(now).Seconds())
	}
	return v
}

func durableInvoice(d *DurableOrder) *InvoiceView {
	return &InvoiceView{
		OrderCode:              d.OrderCode,
		TransactionStatus:      TxStatusDone,
		AccountID:              d.AccountID,
		GameUserID:             d.GameUserID,
		GameServer:             d.GameServer,
		GameNickname:           d.GameNickname,
		ItemCode:               d.ItemCode,
		ItemName:               d.ItemName,
		PaymentMethodCode:      d.PaymentMethodCode,
		PaymentMethodName:      d.PaymentMethodName,
		PaymentKind:            d.PaymentKind,
		SubtotalAmount:         d.SubtotalAmount,
		PromoCode:              d.PromoCode,
		PromoDiscount:          d.PromoDiscount,
		TotalAmount:            d.TotalAmount,
		ContactWhatsapp:        d.ContactWhatsapp,
		PaymentConfirmedByUser: true,
		CreatedAt:              d.CreatedAt,
	}
}

func (s *service) ConfirmPayment(ctx context.Context, code string) (*PendingOrder, error) {
	log := logger.FromCtx(ctx)

	// 1. The order must still be pending.
	o := s.store.Get(code)
	if o == nil {
		return nil, ErrOrderNotFound
	}

	// 2. Inside the payment window.
	if o.IsExpired(s.now()) {
		return nil, ErrOrderExpired
	}

	// 3. Not submitted before.
	if o.Status != StatusPendingPayment {
		return nil, ErrAlreadySubmitted
	}

	// 4. Kind-specific preconditions: the buyer can only confirm once
	// the matching proof artifact is in place.
	switch o.PaymentKind {
	case payment.KindCash:
		return nil, ErrCashNotConfirmable
	case payment.KindQris:
		if o.QrisImageData == "" {
			return nil, ErrQrisNotUploaded
		}
	case payment.KindMinimarket:
		if o.MinimarketPaymentCode == "" {
			return nil, ErrPaymentCodeNotUploaded
		}
	}

	// 5. Flip under the store lock; a concurrent removal loses the race
	// and we report not-found.
	confirmedAt := s.now()
	updated := s.store.Update(code, func(po *PendingOrder) {
		po.Status = StatusPaymentSubmitted
		po.PaymentConfirmedByUser = true
		po.PaymentConfirmedAt = &confirmedAt
	})
	if updated == nil {
		return nil, ErrOrderNotFound
	}

	log.Info("payment confirmed by buyer", zap.String("orderCode", code))
	return updated, nil
}

func (s *service) CancelOrder(ctx context.Context, code string) error {
	log := logger.FromCtx(ctx)

	// A durable order can no longer be cancelled; that outcome is
	// distinct from the order never existing.
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyProcessed
	}

	if s.store.Remove(code) == nil {
		return ErrOrderNotFound
	}

	metrics.OrdersCancelled.Inc()
	log.Info("order cancelled", zap.String("orderCode", code))
	return nil
}

func (s *service) AttachProof(ctx context.Context, code string, input ProofInput) (*PendingOrder, error) {
	log := logger.FromCtx(ctx)

	o := s.store.Get(code)
	if o == nil {
		return nil, ErrOrderNotFound
	}

	switch o.PaymentKind {
	case payment.KindQris:
		if input.QrisImageData == "" {
			return nil, ErrProofKindMismatch
		}
	case payment.KindMinimarket:
		if input.MinimarketPaymentCode == "" {
			return nil, ErrProofKindMismatch
		}
	default:
		// Cash has no proof artifact.
		return nil, ErrProofKindMismatch
	}

	updated := s.store.Update(code, func(po *PendingOrder) {
		switch po.PaymentKind {
		case payment.KindQris:
			po.QrisImageData = input.QrisImageData
		case payment.KindMinimarket:
			po.MinimarketPaymentCode = input.MinimarketPaymentCode
		}
	})
	if updated == nil {
		return nil, ErrOrderNotFound
	}

	log.Info("payment proof attached",
		zap.String("orderCode", code),
		zap.String("paymentKind", string(o.PaymentKind)))
	return updated, nil
}

func (s *service) CompleteOrder(ctx context.Context, code string) error {
	log := logger.FromCtx(ctx)

	// 1. Resolve the pending entry. When it is already gone but the
	// durable row exists, an earlier completion won; report success so
	// retries and double-clicks are harmless.
	o := s.store.Get(code)
	if o == nil {
		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			log.Info("order already completed", zap.String("orderCode", code))
			return nil
		}
		return ErrOrderNotFound
	}

	// 2. The buyer must have confirmed first; expiry is irrelevant here,
	// a confirmed order stays completable.
	if !o.PaymentConfirmedByUser {
		return ErrNotConfirmed
	}

	// 3. Make it durable. A duplicate key means an earlier commit
	// already did, which is success for our purposes.
	inserted, err := s.repo.InsertCompleted(ctx, o)
	if err != nil {
		return err
	}

	// 4. Only after the durable write is safe do we drop the pending
	// entry; a crash in between re-runs harmlessly thanks to step 3.
	s.store.Remove(code)
	metrics.OrdersCompleted.Inc()

	log.Info("order completed",
		zap.String("orderCode", code),
		zap.Bool("insertedNow", inserted),
		zap.Int64("total", o.TotalAmount))
	return nil
}

func (s *service) ListPending(ctx context.Context) []*AdminOrderView {
	now := s.now()
	pending := s.store.ListAll()
	out := make([]*AdminOrderView, 0, len(pending))
	for _, o := range pending {
		uploaded := true
		switch o.PaymentKind {
		case payment.KindQris:
			uploaded = o.QrisImageData != ""
		case payment.KindMinimarket:
			uploaded = o.MinimarketPaymentCode != ""
		}
		out = append(out, &AdminOrderView{
			PendingOrder:  o,
			Expired:       o.IsExpired(now),
			ProofUploaded: uploaded,
		})
	}
	return out
}
