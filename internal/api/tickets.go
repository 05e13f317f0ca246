package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/tickets"
	"ms-reservation/internal/utils"
)

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req tickets.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	ticket, err := h.Tickets.Create(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("ticket issued", ticket))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Tickets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Tickets.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket cancelled", ticket))
}

func (h *Handler) BoardTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Tickets.MarkUsed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("passenger boarded", ticket))
}

// BoardingPass renders the printable PDF with the encrypted QR code.
func (h *Handler) BoardingPass(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Tickets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	trip, err := h.Trips.Get(r.Context(), ticket.TripID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	qrPNG, err := h.QR.GenerateEncryptedQR(*ticket)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to generate QR code", err.Error()))
		return
	}

	pdf, err := h.PDF.Generate(*ticket, trip, qrPNG)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("failed to generate boarding pass", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=boarding-pass-"+ticket.BoardingCode+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
