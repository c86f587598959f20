package middleware

import (
	"net/http"
	"time"

	"NexoraPanel/services"
	"NexoraPanel/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// RequestLog tags each request with an id, logs it and records HTTP metrics
// labelled by route template.
func RequestLog(metrics *services.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := routeTemplate(r)
			metrics.ObserveHTTP(r.Method, route, rec.status, elapsed)
			utils.WithFields(utils.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"route":      route,
				"status":     rec.status,
				"elapsed_ms": elapsed.Milliseconds(),
			}).Debugf("%s %s", r.Method, r.URL.Path)
		})
	}
}
