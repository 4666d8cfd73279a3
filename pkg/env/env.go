// Package env reads process environment variables with fallbacks, for
// the few knobs that live outside the typed config.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or
// empty. Empty is treated as unset so a blank export does not silence
// a default.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
