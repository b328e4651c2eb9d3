package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/api/problem"
)

// Recovery returns a middleware that recovers from panics and answers with
// a 500 problem response.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := GetRequestID(r.Context())

					log.Error().
						Str("request_id", requestID).
						Interface("error", err).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")

					p := problem.Internal(requestID, "an unexpected error occurred")
					p.Instance = r.URL.Path
					p.Write(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
