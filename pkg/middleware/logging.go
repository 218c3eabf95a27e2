package middleware

import (
	"net/http"
	"time"

	"github.com/hkarim/account-service/pkg/logger"
)

// responseWriter captures the status code and body size for the request log.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RequestLogger attaches a request-scoped logger to the context and emits
// one completion line per request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := log.WithContext(r.Context())
			lw := &responseWriter{ResponseWriter: w}

			next.ServeHTTP(lw, r.WithContext(ctx))

			log.Info().
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Int("status", lw.status).
				Dur("duration", time.Since(start)).
				Int("size", lw.size).
				Send()
		})
	}
}
