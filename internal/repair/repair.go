// Package repair coerces loosely structured producer output into the strict
// analysis and fixture shapes. Repair never fails: malformed fields receive
// neutral defaults and unrepairable fragments are dropped.
package repair

// maxUnwrap bounds how many times a JSON-encoded string is re-decoded.
const maxUnwrap = 2

// Repair returns the repaired analysis tree for raw. raw may be a decoded
// tree, a list holding the document, or text containing the document.
// Repair(Repair(x)) equals Repair(x).
func Repair(raw any) map[string]any {
	src := rootObject(raw, maxUnwrap)
	dst := make(map[string]any, len(analysisNormalizers))
	for _, normalize := range analysisNormalizers {
		normalize(src, dst)
	}
	return dst
}

func rootObject(raw any, depth int) map[string]any {
	switch x := raw.(type) {
	case map[string]any:
		return x
	case []any:
		for _, item := range x {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	case string:
		if depth > 0 {
			if v, err := Decode(x); err == nil {
				return rootObject(v, depth-1)
			}
		}
	}
	return map[string]any{}
}
