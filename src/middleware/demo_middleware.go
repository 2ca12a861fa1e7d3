package middleware

import (
	"net/http"
)

// DemoModeMiddleware makes the API read-only, except for the inbound webhooks.
func DemoModeMiddleware(isDemo bool) func(http.Handler) http.Handler {
	allowed := map[string]bool{
		"/api/plaid/webhook": true,
		"/api/jobs":          true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isDemo && r.Method != http.MethodGet && r.Method != http.MethodOptions {
				if allowed[r.URL.Path] {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "Demo mode: only GET requests are allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
