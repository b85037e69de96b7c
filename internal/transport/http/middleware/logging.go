package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.written += n
	return n, err
}

// LoggingMiddleware tags the request with an id (reusing the caller's
// X-Request-ID when present) and logs it once it completes.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r = r.WithContext(logger.ContextWithRequestID(r.Context(), requestID))
		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w}

		slog.DebugContext(r.Context(), "HTTP Request started",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)

		next.ServeHTTP(wrapped, r)

		logger.LogHTTPRequest(
			r.Context(),
			r.Method,
			r.URL.Path,
			r.UserAgent(),
			requestID,
			time.Since(start),
			wrapped.statusCode,
		)
	})
}

func PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// LoggingMiddleware runs inside this one, so the id is only
				// visible on the response header.
				logger.WithRequestID(w.Header().Get(RequestIDHeader)).Error("Panic recovered in HTTP handler",
					slog.Any("panic", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
