package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardflow/paygate/gateway/models"
	"github.com/cardflow/paygate/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// API is a HTTP API for the payment service
type API struct {
	service *Service
	logger  *slog.Logger
	limit   func(http.Handler) http.Handler
}

// NewAPI creates the payments API. limit wraps the /payments routes and may
// be nil.
func NewAPI(service *Service, logger *slog.Logger, limit func(http.Handler) http.Handler) *API {
	return &API{
		service: service,
		logger:  logger,
		limit:   limit,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		if a.limit != nil {
			r.Use(a.limit)
		}
		r.Post("/", a.createPayment)
		r.Get("/{paymentID}", a.getPayment)
	})
}

func (a *API) createPayment(w http.ResponseWriter, r *http.Request) {
	create := models.CreatePayment{}
	err := json.NewDecoder(r.Body).Decode(&create)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgMalformedBody)
		return
	}

	res, err := a.service.ProcessPayment(r.Context(), create)
	if err != nil {
		if errors.Is(err, ErrAuthorizationUnavailable) {
			middleware.WriteError(w, http.StatusServiceUnavailable, msgUnavailable)
		} else {
			a.logger.Error("processing payment", "err", err)
			middleware.WriteError(w, http.StatusInternalServerError, msgUnexpected)
		}
		return
	}

	response := models.NewPaymentResponse(&res.Payment)
	status := http.StatusOK
	if len(res.Violations) > 0 {
		response.Violations = res.Violations
		status = http.StatusBadRequest
	}

	writeJSON(w, status, response)
}

func (a *API) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	payment, err := a.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Payment not found.")
		} else {
			a.logger.Error("getting payment", "err", err, slog.String("payment_id", paymentID))
			middleware.WriteError(w, http.StatusInternalServerError, msgUnexpected)
		}
		return
	}

	writeJSON(w, http.StatusOK, models.NewPaymentResponse(payment))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
