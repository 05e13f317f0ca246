package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/quicksale"
	"ms-reservation/internal/utils"
)

func segmentParams(r *http.Request) (int, int, error) {
	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		return 0, 0, utils.Validationf("query parameter from must be an integer")
	}
	to, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		return 0, 0, utils.Validationf("query parameter to must be an integer")
	}
	return from, to, nil
}

// TripSeats classifies every seat of the trip's bus for the requested
// segment.
func (h *Handler) TripSeats(w http.ResponseWriter, r *http.Request) {
	trip, err := h.Trips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	from, to, err := segmentParams(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Segments.ValidateSegment(r.Context(), trip, from, to); err != nil {
		utils.WriteError(w, err)
		return
	}

	overview, err := h.Segments.ClassifySeats(r.Context(), trip, from, to)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("seat overview", overview))
}

func (h *Handler) SeatAvailability(w http.ResponseWriter, r *http.Request) {
	trip, err := h.Trips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	seat := r.URL.Query().Get("seat")
	if seat == "" {
		utils.WriteError(w, utils.Validationf("query parameter seat is required"))
		return
	}
	from, to, err := segmentParams(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Segments.ValidateSegment(r.Context(), trip, from, to); err != nil {
		utils.WriteError(w, err)
		return
	}

	available, reason, err := h.Segments.SeatAvailable(r.Context(), trip.ID, seat, from, to)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("availability", map[string]interface{}{
		"available": available,
		"reason":    reason,
	}))
}

func (h *Handler) TripOccupancy(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	occupancy, err := h.Tickets.OccupancyRate(r.Context(), tripID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	canOverbook, reason, err := h.Overbooking.CanOverbook(r.Context(), tripID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("occupancy", map[string]interface{}{
		"occupancy_rate": occupancy,
		"can_overbook":   canOverbook,
		"reason":         reason,
	}))
}

func (h *Handler) QuickSaleOffers(w http.ResponseWriter, r *http.Request) {
	from, to, err := segmentParams(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	offers, err := h.QuickSale.ListOffers(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("quick sale offers", offers))
}

func (h *Handler) CreateQuickSale(w http.ResponseWriter, r *http.Request) {
	var req quicksale.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	ticket, err := h.QuickSale.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("quick sale ticket issued", ticket))
}

func (h *Handler) TripArrived(w http.ResponseWriter, r *http.Request) {
	if err := h.Trips.MarkArrived(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("trip arrived", nil))
}

func (h *Handler) TripCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Trips.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("trip cancelled", nil))
}

func (h *Handler) TripReactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Trips.Reactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("trip reactivated", nil))
}
