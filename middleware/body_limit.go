package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// BodyLimit caps request bodies at maxBytes. Form parsing past the cap fails
// and handlers answer 400.
func BodyLimit(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
