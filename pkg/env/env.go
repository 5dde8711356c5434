package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the engine reads.
const Prefix = "CARTENGINE"

// Name returns the namespaced form of key, e.g. CARTENGINE_LOG_FORMAT.
func Name(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	if strings.HasPrefix(key, Prefix+"_") {
		return key
	}
	return Prefix + "_" + key
}

// Get returns the namespaced variable, then the bare key, then fallback.
// Blank values count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Name(key), key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
