package web

import (
	"net/http"
	"slices"
)

const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
)

// AllowedOrigin returns the value for Access-Control-Allow-Origin.
// With an empty allowlist every origin is echoed back (or "*" when the request has none).
// With an allowlist only listed origins are echoed; others get an empty value.
func AllowedOrigin(origins []string, requestOrigin string) string {
	if len(origins) == 0 {
		if requestOrigin == "" {
			return "*"
		}
		return requestOrigin
	}
	if slices.Contains(origins, "*") {
		return "*"
	}
	if slices.Contains(origins, requestOrigin) {
		return requestOrigin
	}
	return ""
}

// SetCORSHeaders attaches the cross-origin headers so browser clients can read the response, errors included.
func SetCORSHeaders(h http.Header, origins []string, requestOrigin string) {
	if origin := AllowedOrigin(origins, requestOrigin); origin != "" {
		h.Set(HeaderAllowOrigin, origin)
		h.Add("Vary", "Origin")
	}
	h.Set(HeaderAllowCredentials, "true")
}

// CORS is a middleware that sets the cross-origin headers on every response.
func CORS(origins []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetCORSHeaders(w.Header(), origins, r.Header.Get("Origin"))
			next.ServeHTTP(w, r)
		})
	}
}
