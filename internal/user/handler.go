package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"topupin-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrEmailExists):
			utils.WriteJSONError(w, err.Error(), http.StatusConflict)
		default:
			utils.WriteJSONError(w, "failed to register", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, map[string]any{
		"id":    account.ID,
		"email": account.Email,
	}, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, account, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		utils.WriteJSONError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"token": token,
		"email": account.Email,
		"role":  account.Role,
	}, http.StatusOK)
}
