package textutil

import "strings"

// LowercaseStringValues lower-cases every string value of m in place and
// returns m. Keys and non-string values are left alone.
func LowercaseStringValues(m map[string]any) map[string]any {
	for k, v := range m {
		if s, ok := v.(string); ok {
			m[k] = strings.ToLower(s)
		}
	}
	return m
}
