package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates the API router with all endpoints.
func NewRouter(h *Handlers, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger.Named("http")))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", h.StartSession).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", h.EndSession).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/answers", h.Answer).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/restart", h.Restart).Methods(http.MethodPost)

	v1.HandleFunc("/catalog", h.Catalog).Methods(http.MethodGet)
	v1.HandleFunc("/stats/recommendations", h.RecommendationTally).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("client_addr", r.RemoteAddr),
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Error("HTTP request failed", fields...)
				return
			}
			logger.Info("HTTP request completed", fields...)
		})
	}
}
