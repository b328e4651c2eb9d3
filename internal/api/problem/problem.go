// Package problem provides RFC7807 error responses for the engine API.
package problem

import (
	"encoding/json"
	"net/http"
)

// Problem type URIs.
const (
	TypeValidation  = "https://api.wanderplan.app/problems/validation-error"
	TypeNotFound    = "https://api.wanderplan.app/problems/not-found"
	TypeTooMany     = "https://api.wanderplan.app/problems/too-many-requests"
	TypeInternal    = "https://api.wanderplan.app/problems/internal-error"
	TypeUnavailable = "https://api.wanderplan.app/problems/service-unavailable"
)

// Problem is an RFC7807 error response, served with
// Content-Type: application/problem+json.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
}

// BadRequest creates a 400 problem.
func BadRequest(traceID, detail string) *Problem {
	return &Problem{
		Type:    TypeValidation,
		Title:   "Bad Request",
		Status:  http.StatusBadRequest,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NotFound creates a 404 problem.
func NotFound(traceID, detail string) *Problem {
	return &Problem{
		Type:    TypeNotFound,
		Title:   "Not Found",
		Status:  http.StatusNotFound,
		Detail:  detail,
		TraceID: traceID,
	}
}

// TooManyRequests creates a 429 problem.
func TooManyRequests(traceID, detail string) *Problem {
	return &Problem{
		Type:    TypeTooMany,
		Title:   "Too Many Requests",
		Status:  http.StatusTooManyRequests,
		Detail:  detail,
		TraceID: traceID,
	}
}

// Internal creates a 500 problem.
func Internal(traceID, detail string) *Problem {
	return &Problem{
		Type:    TypeInternal,
		Title:   "Internal Server Error",
		Status:  http.StatusInternalServerError,
		Detail:  detail,
		TraceID: traceID,
	}
}

// ServiceUnavailable creates a 503 problem.
func ServiceUnavailable(traceID, detail string) *Problem {
	return &Problem{
		Type:    TypeUnavailable,
		Title:   "Service Unavailable",
		Status:  http.StatusServiceUnavailable,
		Detail:  detail,
		TraceID: traceID,
	}
}

// Write writes the problem as JSON to the response writer.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
