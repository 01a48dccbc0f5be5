package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cardflow/paygate/gateway/models"
	"golang.org/x/exp/slog"
)

// NewRecoverer turns a handler panic into the same masked 500 body the API
// uses for unexpected errors. The panic value is logged, not returned.
func NewRecoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("recovered from panic",
					"err", fmt.Errorf("%v", rec),
					slog.String("path", r.URL.Path),
				)
				WriteError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Message: message,
		Code:    status,
	})
}
