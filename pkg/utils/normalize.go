package utils

import "strings"

// NormalizeDomain reduces a tenant identifier to its canonical short form:
// whitespace trimmed, one trailing slash removed, and the fleet base-domain
// suffix stripped. Comparison after normalization is case-sensitive.
func NormalizeDomain(id, baseDomain string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimSuffix(id, "/")
	if baseDomain != "" {
		id = strings.TrimSuffix(id, "."+baseDomain)
	}
	return id
}
