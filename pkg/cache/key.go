package cache

import "strings"

// Key identifies one cached metadata document.
type Key struct {
	// Provider is the metadata provider name (e.g. "crossref").
	Provider string

	// DOI is the article DOI. DOIs are case-insensitive, so the key
	// normalizes to lower case.
	DOI string
}

// String generates a deterministic cache key string.
// Format: meta:provider:doi
//
// Example:
//
//	meta:crossref:10.1101/2023.01.01.000001
func (k Key) String() string {
	return strings.Join([]string{
		"meta",
		k.Provider,
		strings.ToLower(k.DOI),
	}, ":")
}
