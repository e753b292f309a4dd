// internal/backend/environ.go
package backend

import "strings"

// Environ is a process environment in os.Environ form.
type Environ []string

// Lookup returns the last value set for key.
func (e Environ) Lookup(key string) (string, bool) {
	prefix := key + "="
	for i := len(e) - 1; i >= 0; i-- {
		if strings.HasPrefix(e[i], prefix) {
			return e[i][len(prefix):], true
		}
	}
	return "", false
}

// Get returns the value for key, or def when it is unset or empty.
func (e Environ) Get(key, def string) string {
	if v, ok := e.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// With returns a copy of e where key is set to value exactly once.
func (e Environ) With(key, value string) Environ {
	prefix := key + "="
	out := make(Environ, 0, len(e)+1)
	for _, kv := range e {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}
