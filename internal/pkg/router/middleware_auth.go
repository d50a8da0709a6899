package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/pkg/jwt"
)

// middlewareAuthentication requires a valid bearer token on every route
// outside public and stores the claims in the request context.
func middlewareAuthentication(verifier jwt.JWT, public routeSet) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.match(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			token = strings.TrimSpace(token)
			if !ok || token == "" || !strings.EqualFold(scheme, "Bearer") {
				unauthorized(w, "Authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="otpflow"`)
	writeJSON(w, errorResponse{Message: msg}, http.StatusUnauthorized)
}
