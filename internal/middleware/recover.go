package middleware

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/catalog-backend/internal/api/httpx"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "panic", "err", rec, "request_id", RequestIDFrom(r.Context()))
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "Server error. Please try again.", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
