package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when a proxy sets it instead.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// middlewareCorrelationID reuses a caller supplied id when it is sane and
// mints one otherwise. The id is echoed back and travels with ctx into
// logs and published events.
func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := acceptCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = acceptCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// acceptCID keeps printable ASCII ids only, truncated to maxCorrelationIDLen.
func acceptCID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsFunc(v, func(c rune) bool { return c < 0x21 || c > 0x7e }) {
		return ""
	}
	if len(v) > maxCorrelationIDLen {
		v = v[:maxCorrelationIDLen]
	}
	return v
}
