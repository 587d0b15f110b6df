package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // my-app → MyApp
		"camelCase":  CamelCase,  // my-app → myApp
		"snakeCase":  SnakeCase,  // MyApp → my_app
		"kebabCase":  KebabCase,  // My App → my-app

		// String utilities
		"quote":     Quote,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     Title,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"replace":   strings.ReplaceAll,

		// Data helpers
		"dict":     Dict,
		"default":  defaultValue,
		"required": Required,
		"toJSON":   ToJSON, // []string{"a"} → ["a"]
	}
}

// words splits s on separators and lower-to-upper case boundaries.
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.' || r == '/' || r == '@':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

func capitalize(w string) string {
	r := []rune(strings.ToLower(w))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// PascalCase converts any separated or camel-cased name to PascalCase.
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// CamelCase converts any separated or Pascal-cased name to camelCase.
func CamelCase(s string) string {
	p := []rune(PascalCase(s))
	if len(p) == 0 {
		return ""
	}
	p[0] = unicode.ToLower(p[0])
	return string(p)
}

// SnakeCase converts a name to snake_case.
func SnakeCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "_"))
}

// KebabCase converts a name to kebab-case, the form npm package names use.
func KebabCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

// Quote wraps a string in double quotes
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title capitalizes the first letter of each space-separated word.
func Title(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

// Dict creates a map from alternating key-value pairs
// Usage in template: {{ template "partial" (dict "key1" val1 "key2" val2) }}
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T at position %d", values[i], i)
		}
		m[key] = values[i+1]
	}
	return m, nil
}

// defaultValue returns def when val is nil or an empty string.
func defaultValue(def, val any) any {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	return val
}

// Required fails the render when val is nil or an empty string.
func Required(msg string, val any) (any, error) {
	if val == nil {
		return nil, fmt.Errorf("%s", msg)
	}
	if s, ok := val.(string); ok && s == "" {
		return nil, fmt.Errorf("%s", msg)
	}
	return val, nil
}

// ToJSON renders v as compact JSON.
func ToJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
