package llm

// DefaultMaxTokens bounds response length when the caller does not set one.
const DefaultMaxTokens = 2048

// requestOptions is the normalized form of a per-call option map.
type requestOptions struct {
	model       string
	system      string
	maxTokens   int
	temperature *float64
}

// parseOptions normalizes an option map, falling back to the provider's
// configured model. Malformed values are ignored rather than rejected; an
// option map is advisory.
func parseOptions(opts map[string]any, defaultModel string) requestOptions {
	out := requestOptions{model: defaultModel, maxTokens: DefaultMaxTokens}
	if opts == nil {
		return out
	}
	if m, ok := opts["model"].(string); ok && m != "" {
		out.model = m
	}
	if s, ok := opts["system"].(string); ok {
		out.system = s
	}
	if mt, ok := asInt(opts["max_tokens"]); ok && mt > 0 {
		out.maxTokens = mt
	}
	if t, ok := asFloat(opts["temperature"]); ok && t >= 0 && t <= 2 {
		out.temperature = &t
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
