package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/utils"
)

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.Settings.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("settings", all))
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}
	if body.Value == "" {
		utils.WriteError(w, utils.Validationf("value is required"))
		return
	}

	key := chi.URLParam(r, "key")
	if err := h.Settings.Set(r.Context(), key, body.Value); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("setting updated", map[string]string{
		"key":   key,
		"value": body.Value,
	}))
}

// ExpirePending runs the hold and overbooking expiry sweeps on demand,
// without waiting for the next scheduled tick.
func (h *Handler) ExpirePending(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	holds, err := h.Holds.ExpireStale(r.Context(), now)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	requests, err := h.Overbooking.ExpireStale(r.Context(), now)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("expiry sweep complete", map[string]int64{
		"expired_holds":                holds,
		"expired_overbooking_requests": requests,
	}))
}
