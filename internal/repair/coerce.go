package repair

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Placeholder fills narrative fields the producer left out.
const Placeholder = "N/A"

// lookup returns the first non-nil value stored under any of keys.
func lookup(src map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := src[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// toNumber coerces numbers and numeric strings ("1,85", "72%") to a finite float.
func toNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimSuffix(s, "%")
		s = strings.Replace(s, ",", ".", 1)
		if s == "" {
			return 0, false
		}
		f, err = cast.ToFloat64E(strings.TrimSpace(s))
	default:
		f, err = cast.ToFloat64E(v)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// number coerces v and clamps it into [lo, hi]; fallback covers parse failure.
func number(v any, lo, hi, fallback float64) float64 {
	f, ok := toNumber(v)
	if !ok {
		return fallback
	}
	return math.Max(lo, math.Min(hi, f))
}

// toText returns trimmed non-empty text for strings and numbers.
func toText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int, int64, int32, float32:
		return cast.ToString(x), true
	default:
		return "", false
	}
}

func text(v any) string {
	if s, ok := toText(v); ok {
		return s
	}
	return Placeholder
}

// present reports whether v is real content and not the placeholder.
func present(s string) bool {
	return s != "" && s != Placeholder
}

// foldKey is the dedup key for named items: lowercase, whitespace collapsed.
func foldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// asList lifts a lone value into a one-element list.
func asList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

// dedup keeps the first item for each non-empty folded key.
func dedup(items []any, key func(any) string) []any {
	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, it := range items {
		k := foldKey(key(it))
		if k != "" {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}
