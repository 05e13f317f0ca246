package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ms-reservation/internal/auth"
	"ms-reservation/internal/holds"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/overbooking"
	"ms-reservation/internal/quicksale"
	"ms-reservation/internal/segment"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/tickets/boardingpass"
	"ms-reservation/internal/trips"
	"ms-reservation/internal/utils"
)

type Handler struct {
	Holds       *holds.Service
	Tickets     *tickets.Service
	Trips       *trips.Service
	Overbooking *overbooking.Service
	QuickSale   *quicksale.Service
	Segments    *segment.Checker
	Settings    *settings.Store
	QR          *boardingpass.QRGenerator
	PDF         *boardingpass.PDFGenerator
	Logger      *logger.Logger
}

// Routes mounts every endpoint behind the given auth middleware.
func (h *Handler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(authn)

		r.Route("/holds", func(r chi.Router) {
			r.With(auth.RequireCapability(auth.CapHoldWrite)).Post("/", h.CreateHold)
			r.Get("/{id}", h.GetHold)
			r.With(auth.RequireCapability(auth.CapHoldWrite)).Post("/{id}/release", h.ReleaseHold)
			r.With(auth.RequireCapability(auth.CapHoldWrite)).Post("/{id}/convert", h.ConvertHold)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.With(auth.RequireCapability(auth.CapTicketSell)).Post("/", h.CreateTicket)
			r.Get("/{id}", h.GetTicket)
			r.With(auth.RequireCapability(auth.CapTicketCancel)).Post("/{id}/cancel", h.CancelTicket)
			r.With(auth.RequireCapability(auth.CapBoarding)).Post("/{id}/board", h.BoardTicket)
			r.Get("/{id}/boarding-pass", h.BoardingPass)
		})

		r.Route("/trips/{id}", func(r chi.Router) {
			r.With(auth.RequireCapability(auth.CapInventoryRead)).Get("/seats", h.TripSeats)
			r.With(auth.RequireCapability(auth.CapInventoryRead)).Get("/availability", h.SeatAvailability)
			r.With(auth.RequireCapability(auth.CapInventoryRead)).Get("/occupancy", h.TripOccupancy)
			r.With(auth.RequireCapability(auth.CapInventoryRead)).Get("/quick-sale", h.QuickSaleOffers)
			r.With(auth.RequireCapability(auth.CapTripManage)).Post("/arrived", h.TripArrived)
			r.With(auth.RequireCapability(auth.CapTripManage)).Post("/cancel", h.TripCancel)
			r.With(auth.RequireCapability(auth.CapTripManage)).Post("/reactivate", h.TripReactivate)
		})

		r.With(auth.RequireCapability(auth.CapTicketSell)).Post("/quick-sale", h.CreateQuickSale)

		r.Route("/overbooking", func(r chi.Router) {
			r.With(auth.RequireCapability(auth.CapOverbookRequest)).Post("/", h.CreateOverbooking)
			r.Get("/{id}", h.GetOverbooking)
			r.With(auth.RequireCapability(auth.CapOverbookApprove)).Post("/{id}/approve", h.ApproveOverbooking)
			r.With(auth.RequireCapability(auth.CapOverbookApprove)).Post("/{id}/reject", h.RejectOverbooking)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireCapability(auth.CapSettingsManage))
			r.Get("/settings", h.ListSettings)
			r.Put("/settings/{key}", h.PutSetting)
			r.Post("/expire-pending", h.ExpirePending)
		})
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.Logger.LogAPI(r.Method, r.URL.Path, strconv.Itoa(ww.Status()), time.Since(start).String())
	})
}
