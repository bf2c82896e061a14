package cache

import (
	"fmt"
	"strings"
)

// GenerateKey creates a cache key with namespace and ID.
func GenerateKey(namespace string, id string) string {
	return fmt.Sprintf("%s/%s", namespace, id)
}

// SafeName makes an identifier usable as a single path segment.
func SafeName(id string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(id)
}
