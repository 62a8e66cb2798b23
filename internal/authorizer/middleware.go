package authorizer

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/cloudshop/pkg/web"
)

// BasicAuth guards HTTP routes with the same decision the Lambda authorizer makes.
// Denied requests get 401 with a JSON message.
func BasicAuth(a *Authorizer, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := a.Authorize(r.Header.Get("Authorization"), r.Method+" "+r.URL.Path)
			if !decision.Allowed() {
				logger.WarnContext(r.Context(), "Access denied", "reason", decision.Reason, "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Basic realm="catalog"`)
				web.RespondMessage(w, logger, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
