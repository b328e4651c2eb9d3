package middleware

import (
	"net/http"
	"strings"

	"github.com/wanderplan/wanderplan/internal/api/problem"
)

// RequireJSON rejects POST, PUT, and PATCH requests whose Content-Type is
// set to something other than application/json. An absent Content-Type is
// allowed; several engine endpoints take no body.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				p := problem.BadRequest(GetRequestID(r.Context()), "Content-Type must be application/json")
				p.Status = http.StatusUnsupportedMediaType
				p.Title = "Unsupported Media Type"
				p.Instance = r.URL.Path
				p.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
