package instrument

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const maskedValue = "***"

// masker replaces values of configured keys, matched case-insensitively,
// in attributes, attribute groups, maps and JSON payloads.
type masker map[string]struct{}

func newMasker(fields []string) masker {
	m := make(masker, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

func (m masker) hit(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m masker) attr(a slog.Attr) slog.Attr {
	if len(m) == 0 {
		return a
	}
	if m.hit(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s, ok := m.json([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any:
			a.Value = slog.AnyValue(m.data(v))
		case map[string]string:
			out := make(map[string]string, len(v))
			for k, s := range v {
				if m.hit(k) {
					s = maskedValue
				}
				out[k] = s
			}
			a.Value = slog.AnyValue(out)
		case []byte:
			if s, ok := m.json(v); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}

	return a
}

func (m masker) json(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}
	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}
	out, err := json.Marshal(m.data(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (m masker) data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.hit(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.data(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.data(inner)
		}
		return out
	default:
		return v
	}
}
