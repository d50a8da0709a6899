package instrument

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

const maskedValue = "***"

// DefaultMaskFields are redacted from every log line whatever the config
// adds: credentials, one-time codes and the tokens minted from them.
var DefaultMaskFields = []string{
	"authorization",
	"cookie",
	"password",
	"new_password",
	"old_password",
	"otp",
	"auth_token",
	"password_set_token",
	"password_reset_token",
	"exchange_token",
	"seed",
	"secret",
}

// Masker replaces the values of sensitive keys, matched case-insensitively,
// in log attributes, decoded JSON and HTTP headers.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker masks DefaultMaskFields plus extra.
func NewMasker(extra ...string) *Masker {
	m := &Masker{keys: make(map[string]struct{}, len(DefaultMaskFields)+len(extra))}
	for _, f := range slices.Concat(DefaultMaskFields, extra) {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m.keys[f] = struct{}{}
		}
	}
	return m
}

func (m *Masker) Sensitive(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Value masks nested maps and slices as produced by encoding/json.
func (m *Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Sensitive(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = inner
		}
		return m.Value(out)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON decodes b and masks it. ok is false when b is not JSON.
func (m *Masker) JSON(b []byte) (any, bool) {
	var decoded any
	if len(b) == 0 || json.Unmarshal(b, &decoded) != nil {
		return nil, false
	}
	return m.Value(decoded), true
}

// Header returns a copy of h with sensitive headers masked.
func (m *Masker) Header(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if m.Sensitive(k) {
			out[k] = []string{maskedValue}
		}
	}
	return out
}

// Attr masks a slog attribute, looking inside groups, maps and JSON text.
func (m *Masker) Attr(a slog.Attr) slog.Attr {
	if m.Sensitive(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.Attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s := a.Value.String(); s != "" && (s[0] == '{' || s[0] == '[') {
			if masked, ok := m.JSON([]byte(s)); ok {
				a.Value = slog.AnyValue(masked)
			}
		}
	case slog.KindAny:
		switch val := a.Value.Any().(type) {
		case map[string]any, map[string]string, []any:
			a.Value = slog.AnyValue(m.Value(val))
		case http.Header:
			a.Value = slog.AnyValue(m.Header(val))
		case []byte:
			if masked, ok := m.JSON(val); ok {
				a.Value = slog.AnyValue(masked)
			}
		}
	}

	return a
}
