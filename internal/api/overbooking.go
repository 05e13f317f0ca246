package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/auth"
	"ms-reservation/internal/overbooking"
	"ms-reservation/internal/utils"
)

func (h *Handler) CreateOverbooking(w http.ResponseWriter, r *http.Request) {
	var in overbooking.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	in.RequestedBy = auth.ActorID(r.Context())

	req, err := h.Overbooking.Request(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("overbooking requested", req))
}

func (h *Handler) GetOverbooking(w http.ResponseWriter, r *http.Request) {
	req, err := h.Overbooking.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("overbooking request", req))
}

func (h *Handler) ApproveOverbooking(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Overbooking.Approve(r.Context(), chi.URLParam(r, "id"), auth.ActorID(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("overbooking approved", ticket))
}

func (h *Handler) RejectOverbooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	// body is optional for rejections
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.Overbooking.Reject(r.Context(), chi.URLParam(r, "id"), auth.ActorID(r.Context()), body.Reason)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("overbooking rejected", req))
}
