package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"topupin-be/internal/catalog"
	"topupin-be/internal/payment"
	"topupin-be/internal/promo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) FindByCode(ctx context.Context, code string) (*DurableOrder, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DurableOrder), args.Error(1)
}

func (m *MockRepository) InsertCompleted(ctx context.Context, o *PendingOrder) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetActiveItem(ctx context.Context, id uint) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockCatalog) GetActivePaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PaymentMethod), args.Error(1)
}

type MockPromos struct {
	mock.Mock
}

func (m *MockPromos) GetActiveByCode(ctx context.Context, code string) (*promo.Promo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promo.Promo), args.Error(1)
}

type serviceFixture struct {
	store   *Store
	repo    *MockRepository
	catalog *MockCatalog
	promos  *MockPromos
	svc     *service
	now     time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		store:   NewStore(),
		repo:    new(MockRepository),
		catalog: new(MockCatalog),
		promos:  new(MockPromos),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.repo, f.catalog, f.promos, time.Hour).(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *serviceFixture) seedPending(code string, kind payment.Kind) *PendingOrder {
	o := &PendingOrder{
		OrderCode:       code,
		GameUserID:      "123456",
		GameServer:      "2001",
		ItemCode:        "ml-dia-86",
		ItemName:        "Mobile Legends 86 Diamonds",
		PaymentKind:     kind,
		SubtotalAmount:  25000,
		TotalAmount:     25000,
		ContactWhatsapp: "081234567890",
		Status:          StatusPendingPayment,
		CreatedAt:       f.now,
		ExpiresAt:       f.now.Add(time.Hour),
	}
	f.store.Save(o)
	return o
}

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		GameUserID:      "123456",
		GameServer:      "2001",
		GameNickname:    "player",
		ItemID:          1,
		PaymentMethodID: 2,
		ContactWhatsapp: "081234567890",
	}
}

func mlItem() *catalog.Item {
	return &catalog.Item{ID: 1, Code: "ml-dia-86", Name: "Mobile Legends 86 Diamonds", Price: 25000, Active: true}
}

func qrisMethod() *catalog.PaymentMethod {
	return &catalog.PaymentMethod{ID: 2, Code: "qris", Name: "QRIS", Kind: payment.KindQris, Active: true}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(mlItem(), nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(false, nil)

	result, err := f.svc.PlaceOrder(ctx, validInput())
	require.NoError(t, err)

	o := result.Order
	assert.Contains(t, o.OrderCode, "MLD")
	assert.Equal(t, "/invoice/"+o.OrderCode, result.InvoiceURL)
	assert.Equal(t, int64(25000), o.SubtotalAmount)
	assert.Equal(t, int64(25000), o.TotalAmount)
	assert.Equal(t, StatusPendingPayment, o.Status)
	assert.Equal(t, payment.KindQris, o.PaymentKind)
	assert.Equal(t, f.now.Add(time.Hour), o.ExpiresAt)
	assert.True(t, f.store.Has(o.OrderCode))
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PlaceOrderInput)
		field  string
	}{
		{"MissingGameUserID", func(i *PlaceOrderInput) { i.GameUserID = " " }, "gameUserId"},
		{"MissingGameServer", func(i *PlaceOrderInput) { i.GameServer = "" }, "gameServer"},
		{"MissingItem", func(i *PlaceOrderInput) { i.ItemID = 0 }, "itemId"},
		{"MissingPaymentMethod", func(i *PlaceOrderInput) { i.PaymentMethodID = 0 }, "paymentMethodId"},
		{"BadWhatsapp", func(i *PlaceOrderInput) { i.ContactWhatsapp = "12345" }, "contactWhatsapp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := f.svc.PlaceOrder(ctx, input)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestPlaceOrder_InactiveItem(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(nil, catalog.ErrItemNotFound)

	_, err := f.svc.PlaceOrder(ctx, validInput())
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestPlaceOrder_PercentPromoCapped(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	item := mlItem()
	item.Price = 100000
	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(item, nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)
	f.promos.On("GetActiveByCode", ctx, "HEMAT10").Return(&promo.Promo{
		ID: 9, Code: "HEMAT10", Type: promo.TypePercent, Value: 10, MaxDiscount: 5000, Active: true,
	}, nil)
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(false, nil)

	input := validInput()
	input.PromoCode = "HEMAT10"

	result, err := f.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	// 10% of 100000 is 10000, capped at 5000
	assert.Equal(t, int64(5000), result.Order.PromoDiscount)
	assert.Equal(t, int64(95000), result.Order.TotalAmount)
	assert.Equal(t, "HEMAT10", result.Order.PromoCode)
}

func TestPlaceOrder_AmountPromoClampedToSubtotal(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	item := mlItem()
	item.Price = 15000
	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(item, nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)
	f.promos.On("GetActiveByCode", ctx, "POTONG20K").Return(&promo.Promo{
		ID: 10, Code: "POTONG20K", Type: promo.TypeAmount, Value: 20000, Active: true,
	}, nil)
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(false, nil)

	input := validInput()
	input.PromoCode = "POTONG20K"

	result, err := f.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	// fixed 20000 off a 15000 subtotal floors at zero, never negative
	assert.Equal(t, int64(15000), result.Order.PromoDiscount)
	assert.Equal(t, int64(0), result.Order.TotalAmount)
}

func TestPlaceOrder_PromoEligibility(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(mlItem(), nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)

	future := f.now.Add(time.Hour)
	past := f.now.Add(-time.Hour)

	tests := []struct {
		name    string
		promo   *promo.Promo
		wantErr error
	}{
		{"NotStarted", &promo.Promo{Code: "X", Type: promo.TypeAmount, Value: 1000, StartsAt: &future}, promo.ErrPromoNotStarted},
		{"Ended", &promo.Promo{Code: "X", Type: promo.TypeAmount, Value: 1000, EndsAt: &past}, promo.ErrPromoEnded},
		{"BelowMinimum", &promo.Promo{Code: "X", Type: promo.TypeAmount, Value: 1000, MinSubtotal: 50000}, promo.ErrPromoMinSubtotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promos := new(MockPromos)
			promos.On("GetActiveByCode", ctx, "X").Return(tt.promo, nil)
			f.svc.promos = promos

			input := validInput()
			input.PromoCode = "X"

			_, err := f.svc.PlaceOrder(ctx, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlaceOrder_CodeCollisionRetries(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(mlItem(), nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)
	// first durable check collides, second is free
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()

	result, err := f.svc.PlaceOrder(ctx, validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Order.OrderCode)
	f.repo.AssertNumberOfCalls(t, "ExistsByCode", 2)
}

func TestPlaceOrder_UniquenessCheckFails(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.catalog.On("GetActiveItem", ctx, uint(1)).Return(mlItem(), nil)
	f.catalog.On("GetActivePaymentMethod", ctx, uint(2)).Return(qrisMethod(), nil)
	f.repo.On("ExistsByCode", ctx, mock.AnythingOfType("string")).Return(false, errors.New("db down"))

	_, err := f.svc.PlaceOrder(ctx, validInput())
	assert.Error(t, err)
	assert.Equal(t, 0, f.store.Len())
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("QrisWithProof", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.store.Update("Q1", func(o *PendingOrder) { o.QrisImageData = "base64data" })

		o, err := f.svc.ConfirmPayment(ctx, "Q1")
		require.NoError(t, err)
		assert.Equal(t, StatusPaymentSubmitted, o.Status)
		assert.True(t, o.PaymentConfirmedByUser)
		require.NotNil(t, o.PaymentConfirmedAt)
		assert.Equal(t, f.now, *o.PaymentConfirmedAt)
	})

	t.Run("QrisWithoutProof", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)

		_, err := f.svc.ConfirmPayment(ctx, "Q1")
		assert.ErrorIs(t, err, ErrQrisNotUploaded)
	})

	t.Run("MinimarketWithoutCode", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("M1", payment.KindMinimarket)

		_, err := f.svc.ConfirmPayment(ctx, "M1")
		assert.ErrorIs(t, err, ErrPaymentCodeNotUploaded)
	})

	t.Run("MinimarketWithCode", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("M1", payment.KindMinimarket)
		f.store.Update("M1", func(o *PendingOrder) { o.MinimarketPaymentCode = "8991234567" })

		o, err := f.svc.ConfirmPayment(ctx, "M1")
		require.NoError(t, err)
		assert.True(t, o.PaymentConfirmedByUser)
	})

	t.Run("CashNeverConfirmable", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("C1", payment.KindCash)

		_, err := f.svc.ConfirmPayment(ctx, "C1")
		assert.ErrorIs(t, err, ErrCashNotConfirmable)
	})

	t.Run("Expired", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.now = f.now.Add(time.Hour) // exactly at expiresAt counts as expired

		_, err := f.svc.ConfirmPayment(ctx, "Q1")
		assert.ErrorIs(t, err, ErrOrderExpired)
	})

	t.Run("AlreadySubmitted", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.store.Update("Q1", func(o *PendingOrder) {
			o.QrisImageData = "base64data"
			o.Status = StatusPaymentSubmitted
		})

		_, err := f.svc.ConfirmPayment(ctx, "Q1")
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.ConfirmPayment(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestAttachProof(t *testing.T) {
	ctx := context.Background()

	t.Run("QrisImage", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)

		o, err := f.svc.AttachProof(ctx, "Q1", ProofInput{QrisImageData: "base64data"})
		require.NoError(t, err)
		assert.Equal(t, "base64data", o.QrisImageData)
	})

	t.Run("MinimarketCode", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("M1", payment.KindMinimarket)

		o, err := f.svc.AttachProof(ctx, "M1", ProofInput{MinimarketPaymentCode: "8991234567"})
		require.NoError(t, err)
		assert.Equal(t, "8991234567", o.MinimarketPaymentCode)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)

		_, err := f.svc.AttachProof(ctx, "Q1", ProofInput{MinimarketPaymentCode: "899"})
		assert.ErrorIs(t, err, ErrProofKindMismatch)
	})

	t.Run("CashHasNoProof", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("C1", payment.KindCash)

		_, err := f.svc.AttachProof(ctx, "C1", ProofInput{QrisImageData: "x"})
		assert.ErrorIs(t, err, ErrProofKindMismatch)
	})
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()

	confirmed := func(f *serviceFixture, code string) {
		f.seedPending(code, payment.KindQris)
		f.store.Update(code, func(o *PendingOrder) {
			o.QrisImageData = "base64data"
			o.Status = StatusPaymentSubmitted
			o.PaymentConfirmedByUser = true
		})
	}

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture(t)
		confirmed(f, "Q1")
		f.repo.On("InsertCompleted", ctx, mock.AnythingOfType("*order.PendingOrder")).Return(true, nil)

		err := f.svc.CompleteOrder(ctx, "Q1")
		require.NoError(t, err)
		assert.False(t, f.store.Has("Q1"))
	})

	t.Run("NotConfirmed", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)

		err := f.svc.CompleteOrder(ctx, "Q1")
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.True(t, f.store.Has("Q1"))
		f.repo.AssertNotCalled(t, "InsertCompleted")
	})

	t.Run("DuplicateKeyIsSuccess", func(t *testing.T) {
		f := newServiceFixture(t)
		confirmed(f, "Q1")
		f.repo.On("InsertCompleted", ctx, mock.AnythingOfType("*order.PendingOrder")).Return(false, nil)

		err := f.svc.CompleteOrder(ctx, "Q1")
		require.NoError(t, err)
		assert.False(t, f.store.Has("Q1"), "pending entry must still be dropped")
	})

	t.Run("InsertFailureKeepsPending", func(t *testing.T) {
		f := newServiceFixture(t)
		confirmed(f, "Q1")
		f.repo.On("InsertCompleted", ctx, mock.AnythingOfType("*order.PendingOrder")).Return(false, errors.New("db down"))

		err := f.svc.CompleteOrder(ctx, "Q1")
		assert.Error(t, err)
		assert.True(t, f.store.Has("Q1"), "pending entry survives a failed commit")
	})

	t.Run("ExpiredButConfirmedStillCompletable", func(t *testing.T) {
		f := newServiceFixture(t)
		confirmed(f, "Q1")
		f.now = f.now.Add(2 * time.Hour)
		f.repo.On("InsertCompleted", ctx, mock.AnythingOfType("*order.PendingOrder")).Return(true, nil)

		err := f.svc.CompleteOrder(ctx, "Q1")
		assert.NoError(t, err)
	})

	t.Run("RetryAfterRemovalIsSuccess", func(t *testing.T) {
		f := newServiceFixture(t)
		confirmed(f, "Q1")
		f.repo.On("InsertCompleted", ctx, mock.AnythingOfType("*order.PendingOrder")).Return(true, nil).Once()
		f.repo.On("ExistsByCode", ctx, "Q1").Return(true, nil)

		require.NoError(t, f.svc.CompleteOrder(ctx, "Q1"))
		// second call after the pending entry is gone
		assert.NoError(t, f.svc.CompleteOrder(ctx, "Q1"))
		f.repo.AssertNumberOfCalls(t, "InsertCompleted", 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.On("ExistsByCode", ctx, "NOPE").Return(false, nil)

		err := f.svc.CompleteOrder(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.repo.On("ExistsByCode", ctx, "Q1").Return(false, nil)

		err := f.svc.CancelOrder(ctx, "Q1")
		require.NoError(t, err)
		assert.False(t, f.store.Has("Q1"))
	})

	t.Run("AlreadyDurable", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.On("ExistsByCode", ctx, "Q1").Return(true, nil)

		err := f.svc.CancelOrder(ctx, "Q1")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("NotFoundAnywhere", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.On("ExistsByCode", ctx, "Q1").Return(false, nil)

		err := f.svc.CancelOrder(ctx, "Q1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestGetInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("PendingUnpaid", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.now = f.now.Add(15 * time.Minute)

		v, err := f.svc.GetInvoice(ctx, "Q1")
		require.NoError(t, err)
		assert.Equal(t, TxStatusUnpaid, v.TransactionStatus)
		assert.True(t, v.CanPay)
		assert.Equal(t, int64(45*60), v.RemainingSeconds)
		assert.NotEmpty(t, v.Instructions)
		require.NotNil(t, v.ExpiresAt)
	})

	t.Run("PendingAwaitingVerification", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.store.Update("Q1", func(o *PendingOrder) {
			o.Status = StatusPaymentSubmitted
			o.PaymentConfirmedByUser = true
		})

		v, err := f.svc.GetInvoice(ctx, "Q1")
		require.NoError(t, err)
		assert.Equal(t, TxStatusAwaiting, v.TransactionStatus)
		assert.False(t, v.CanPay)
	})

	t.Run("PendingExpired", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seedPending("Q1", payment.KindQris)
		f.now = f.now.Add(2 * time.Hour)

		v, err := f.svc.GetInvoice(ctx, "Q1")
		require.NoError(t, err)
		assert.Equal(t, TxStatusExpired, v.TransactionStatus)
		assert.False(t, v.CanPay)
		assert.Zero(t, v.RemainingSeconds)
	})

	t.Run("DurableFallback", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.On("FindByCode", ctx, "Q1").Return(&DurableOrder{
			OrderCode:   "Q1",
			ItemName:    "Mobile Legends 86 Diamonds",
			TotalAmount: 25000,
			Status:      DurableStatusCompleted,
		}, nil)

		v, err := f.svc.GetInvoice(ctx, "Q1")
		require.NoError(t, err)
		assert.Equal(t, TxStatusDone, v.TransactionStatus)
		assert.False(t, v.CanPay)
		assert.Nil(t, v.ExpiresAt)
		assert.Empty(t, v.QrisImageData)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newServiceFixture(t)
		f.repo.On("FindByCode", ctx, "NOPE").Return(nil, ErrOrderNotFound)

		_, err := f.svc.GetInvoice(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	f.seedPending("Q1", payment.KindQris)
	f.store.Update("Q1", func(o *PendingOrder) { o.QrisImageData = "base64data" })

	m := f.seedPending("M1", payment.KindMinimarket)
	m.CreatedAt = f.now.Add(time.Minute)
	f.store.Save(m)

	views := f.svc.ListPending(ctx)
	require.Len(t, views, 2)

	// newest first
	assert.Equal(t, "M1", views[0].OrderCode)
	assert.False(t, views[0].ProofUploaded)
	assert.Equal(t, "Q1", views[1].OrderCode)
	assert.True(t, views[1].ProofUploaded)
}
