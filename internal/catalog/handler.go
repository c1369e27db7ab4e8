package catalog

import (
	"net/http"

	"topupin-be/internal/logger"
	"topupin-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type itemView struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type paymentMethodView struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListActiveItems(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list items", zap.Error(err))
		utils.WriteJSONError(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, itemView{ID: it.ID, Code: it.Code, Name: it.Name, Price: it.Price})
	}

	utils.WriteJSON(w, map[string]any{"items": views}, http.StatusOK)
}

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.repo.ListActivePaymentMethods(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list payment methods", zap.Error(err))
		utils.WriteJSONError(w, "failed to load payment methods", http.StatusInternalServerError)
		return
	}

	views := make([]paymentMethodView, 0, len(methods))
	for _, pm := range methods {
		views = append(views, paymentMethodView{ID: pm.ID, Code: pm.Code, Name: pm.Name, Kind: string(pm.Kind)})
	}

	utils.WriteJSON(w, map[string]any{"payment_methods": views}, http.StatusOK)
}
