// Package tmpl implements the placeholder substitution used for branch names,
// PR titles and changelog bodies. Tokens look like {{a.b}} and are resolved by
// dotted-path lookup; a token whose path is missing from the context is left
// untouched so callers can validate the rendered output.
package tmpl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([\w.-]+)\s*\}\}`)

// Render substitutes every {{path}} token in s with its value from ctx.
// Unknown paths keep their literal token text.
func Render(s string, ctx map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		path := tokenPattern.FindStringSubmatch(token)[1]
		v, ok := lookup(ctx, path)
		if !ok {
			return token
		}
		return stringify(v)
	})
}

// RenderValue applies Render to every string reachable in a JSON-shaped value
// (string, number, bool, nil, []any, map[string]any). Containers are copied,
// never mutated in place.
func RenderValue(v any, ctx map[string]any) any {
	switch val := v.(type) {
	case string:
		return Render(val, ctx)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = RenderValue(item, ctx)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = RenderValue(item, ctx)
		}
		return out
	default:
		return v
	}
}

func lookup(ctx map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = ctx
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		// JSON numbers arrive as float64; render integers without a decimal
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
