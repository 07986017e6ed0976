package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
)

// RequestContext tags every request with a request id and the caller's
// username from the X-Username header. The id is echoed back in the
// X-Request-ID response header.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		if username := r.Header.Get("X-Username"); username != "" {
			ctx = logging.WithUsername(ctx, username)
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
