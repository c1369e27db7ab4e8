package order

import (
	"errors"
	"net/http"

	"topupin-be/internal/catalog"
	"topupin-be/internal/logger"
	"topupin-be/internal/promo"
	"topupin-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Handler struct {
	svc  Service
	lock *Lock
}

func NewHandler(svc Service, lock *Lock) *Handler {
	return &Handler{svc: svc, lock: lock}
}

type placeOrderRequest struct {
	GameUserID      string `json:"game_user_id"`
	GameServer      string `json:"game_server"`
	GameNickname    string `json:"game_nickname"`
	ItemID          uint   `json:"item_id"`
	PaymentMethodID uint   `json:"payment_method_id"`
	PromoCode       string `json:"promo_code"`
	ContactWhatsapp string `json:"contact_whatsapp"`
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := PlaceOrderInput{
		GameUserID:      req.GameUserID,
		GameServer:      req.GameServer,
		GameNickname:    req.GameNickname,
		ItemID:          req.ItemID,
		PaymentMethodID: req.PaymentMethodID,
		PromoCode:       req.PromoCode,
		ContactWhatsapp: req.ContactWhatsapp,
	}
	if id, ok := utils.GetAccountIDFromContext(r.Context()); ok {
		input.AccountID = &id
	}

	result, err := h.svc.PlaceOrder(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.lock.Set(w, result.Order.OrderCode)
	utils.WriteJSON(w, map[string]any{
		"order_code":  result.Order.OrderCode,
		"invoice_url": result.InvoiceURL,
		"total":       result.Order.TotalAmount,
		"expires_at":  result.Order.ExpiresAt,
	}, http.StatusCreated)
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	view, err := h.svc.GetInvoice(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Re-arm the lock while the order is still payable so a buyer who
	// wanders off keeps getting steered back here.
	if view.CanPay {
		h.lock.Set(w, code)
	}

	utils.WriteJSON(w, invoiceResponse(view), http.StatusOK)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	o, err := h.svc.ConfirmPayment(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"order_code": o.OrderCode,
		"status":     string(o.Status),
	}, http.StatusOK)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	err := h.svc.CancelOrder(r.Context(), code)

	// The cookie goes regardless of the outcome, otherwise a stale lock
	// keeps bouncing the buyer to a dead invoice.
	h.lock.Clear(w)

	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, map[string]any{"message": "order cancelled"}, http.StatusOK)
}

type proofRequest struct {
	QrisImageData         string `json:"qris_image_data"`
	MinimarketPaymentCode string `json:"minimarket_payment_code"`
}

func (h *Handler) AttachProof(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req proofRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.svc.AttachProof(r.Context(), code, ProofInput{
		QrisImageData:         req.QrisImageData,
		MinimarketPaymentCode: req.MinimarketPaymentCode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"order_code":   o.OrderCode,
		"payment_kind": string(o.PaymentKind),
	}, http.StatusOK)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.svc.CompleteOrder(r.Context(), code); err != nil {
		h.writeError(w, r, err)
		return
	}

	// Clearing only helps when the admin shares the buyer's browser,
	// but it costs nothing and the landing guard mops up the rest.
	if h.lock.Read(r) == code {
		h.lock.Clear(w)
	}

	utils.WriteJSON(w, map[string]any{"message": "order completed"}, http.StatusOK)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	views := h.svc.ListPending(r.Context())

	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, map[string]any{
			"order_code":          v.OrderCode,
			"item_name":           v.ItemName,
			"payment_method_name": v.PaymentMethodName,
			"payment_kind":        string(v.PaymentKind),
			"total":               v.TotalAmount,
			"status":              string(v.Status),
			"confirmed_by_user":   v.PaymentConfirmedByUser,
			"proof_uploaded":      v.ProofUploaded,
			"expired":             v.Expired,
			"contact_whatsapp":    v.ContactWhatsapp,
			"created_at":          v.CreatedAt,
			"expires_at":          v.ExpiresAt,
		})
	}

	utils.WriteJSON(w, map[string]any{"orders": out}, http.StatusOK)
}

// Landing redirects a browser that carries a valid lock cookie for an
// unresolved order back to that order's invoice. Resolved or dangling
// locks are cleared and the request falls through to next.
func (h *Handler) Landing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := h.lock.Read(r)
		if code == "" {
			next.ServeHTTP(w, r)
			return
		}

		view, err := h.svc.GetInvoice(r.Context(), code)
		if err != nil || view.TransactionStatus == TxStatusDone {
			h.lock.Clear(w)
			next.ServeHTTP(w, r)
			return
		}

		http.Redirect(w, r, "/invoice/"+code, http.StatusFound)
	})
}

func invoiceResponse(v *InvoiceView) map[string]any {
	resp := map[string]any{
		"order_code":          v.OrderCode,
		"transaction_status":  v.TransactionStatus,
		"can_pay":             v.CanPay,
		"remaining_seconds":   v.RemainingSeconds,
		"game_user_id":        v.GameUserID,
		"game_server":         v.GameServer,
		"game_nickname":       v.GameNickname,
		"item_code":           v.ItemCode,
		"item_name":           v.ItemName,
		"payment_method_code": v.PaymentMethodCode,
		"payment_method_name": v.PaymentMethodName,
		"payment_kind":        string(v.PaymentKind),
		"subtotal":            v.SubtotalAmount,
		"promo_code":          v.PromoCode,
		"promo_discount":      v.PromoDiscount,
		"total":               v.TotalAmount,
		"contact_whatsapp":    v.ContactWhatsapp,
		"confirmed_by_user":   v.PaymentConfirmedByUser,
		"instructions":        v.Instructions,
		"created_at":          v.CreatedAt,
	}
	if v.ExpiresAt != nil {
		resp["expires_at"] = v.ExpiresAt
	}
	if v.QrisImageData != "" {
		resp["qris_image_data"] = v.QrisImageData
	}
	if v.MinimarketPaymentCode != "" {
		resp["minimarket_payment_code"] = v.MinimarketPaymentCode
	}
	return resp
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		utils.WriteJSONError(w, fieldErr.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrPaymentMethodNotFound),
		errors.Is(err, promo.ErrPromoNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, ErrAlreadyProcessed):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, ErrOrderExpired),
		errors.Is(err, ErrAlreadySubmitted),
		errors.Is(err, ErrCashNotConfirmable),
		errors.Is(err, ErrQrisNotUploaded),
		errors.Is(err, ErrPaymentCodeNotUploaded),
		errors.Is(err, ErrNotConfirmed),
		errors.Is(err, ErrProofKindMismatch),
		errors.Is(err, promo.ErrPromoNotStarted),
		errors.Is(err, promo.ErrPromoEnded),
		errors.Is(err, promo.ErrPromoMinSubtotal):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)

	default:
		logger.FromCtx(r.Context()).Error("order operation failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
