package converter

import "math"

// Portable returns v with every non-finite float replaced by its string
// form ("+Inf", "-Inf" or "NaN") so the value survives JSON encoding.
// Maps and slices are copied; v itself is left untouched.
func Portable(v any) any {
	switch t := v.(type) {
	case float64:
		switch {
		case math.IsInf(t, 1):
			return "+Inf"
		case math.IsInf(t, -1):
			return "-Inf"
		case math.IsNaN(t):
			return "NaN"
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Portable(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Portable(e)
		}
		return out
	default:
		return v
	}
}
