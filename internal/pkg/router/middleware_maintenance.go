package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/pkg/config"
)

const maintenanceRetryAfter = 120 // seconds

// middlewareMaintenance answers 503 for the routes listed in
// app.maintenance.endpoints. An entry is "/path", "METHOD /path" or "*"
// for every route. /health stays reachable so probes keep working.
func middlewareMaintenance(cfg config.Config) Middleware {
	var entries []string
	if cfg != nil {
		entries = cfg.GetArray("app.maintenance.endpoints")
	}
	blocked := newRouteSet(entries...)

	return func(next http.Handler) http.Handler {
		if blocked.empty() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			if route != "/health" && blocked.match(r.Method, route) {
				w.Header().Set("Retry-After", strconv.Itoa(maintenanceRetryAfter))
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// routeSet matches requests against "METHOD /path" or "/path" entries.
type routeSet struct {
	all      bool
	anyVerb  map[string]struct{}
	byMethod map[string]struct{}
}

func newRouteSet(entries ...string) routeSet {
	s := routeSet{anyVerb: map[string]struct{}{}, byMethod: map[string]struct{}{}}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		switch method, path, found := strings.Cut(e, " "); {
		case e == "":
		case e == "*":
			s.all = true
		case found:
			s.byMethod[strings.ToUpper(method)+" "+strings.TrimSpace(path)] = struct{}{}
		default:
			s.anyVerb[e] = struct{}{}
		}
	}
	return s
}

func (s routeSet) empty() bool {
	return !s.all && len(s.anyVerb) == 0 && len(s.byMethod) == 0
}

func (s routeSet) match(method, path string) bool {
	if s.all {
		return true
	}
	if _, ok := s.anyVerb[path]; ok {
		return true
	}
	_, ok := s.byMethod[method+" "+path]
	return ok
}
