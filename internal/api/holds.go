package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/auth"
	"ms-reservation/internal/holds"
	"ms-reservation/internal/utils"
)

func (h *Handler) CreateHold(w http.ResponseWriter, r *http.Request) {
	var req holds.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if req.HolderID == "" {
		req.HolderID = auth.ActorID(r.Context())
	}

	hold, err := h.Holds.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("hold created", hold))
}

func (h *Handler) GetHold(w http.ResponseWriter, r *http.Request) {
	hold, err := h.Holds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("hold", hold))
}

func (h *Handler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	hold, err := h.Holds.Release(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("hold released", hold))
}

func (h *Handler) ConvertHold(w http.ResponseWriter, r *http.Request) {
	var req holds.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if req.PassengerID == "" {
		req.PassengerID = auth.ActorID(r.Context())
	}

	ticket, err := h.Holds.Convert(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("hold converted", ticket))
}
