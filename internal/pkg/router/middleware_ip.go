package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/otpflow/internal/pkg/config"
)

// middlewareIP rewrites RemoteAddr to the client address. Forwarding
// headers are honoured only when the direct peer is one of
// app.server.trusted_proxies, otherwise a caller could forge the address
// stored as an OTP record's requestor_ip and a session's ip_address.
func middlewareIP(cfg config.Config) Middleware {
	var trusted []netip.Prefix
	if cfg != nil {
		trusted = parsePrefixes(cfg.GetArray("app.server.trusted_proxies"))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, trusted); ip.IsValid() {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parsePrefixes(entries []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("ignoring invalid trusted proxy", "entry", e)
	}
	return out
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP walks X-Forwarded-For right to left and returns the first hop
// that is not a trusted proxy. True-Client-IP and X-Real-IP are consulted
// when no X-Forwarded-For is present.
func clientIP(r *http.Request, trusted []netip.Prefix) netip.Addr {
	peer := parseAddr(r.RemoteAddr)
	if !peer.IsValid() || !isTrusted(peer, trusted) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := parseAddr(hops[i])
			if !hop.IsValid() {
				break
			}
			if !isTrusted(hop, trusted) {
				return hop
			}
			peer = hop
		}
		return peer
	}

	for _, h := range []string{"True-Client-IP", "X-Real-IP"} {
		if ip := parseAddr(r.Header.Get(h)); ip.IsValid() {
			return ip
		}
	}
	return peer
}

// parseAddr accepts "ip" or "ip:port", with or without brackets. Zones are
// dropped so link-local peers still pass "ip" validation downstream.
func parseAddr(s string) netip.Addr {
	s = strings.TrimSpace(s)
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}
	}
	return ip.Unmap().WithZone("")
}
