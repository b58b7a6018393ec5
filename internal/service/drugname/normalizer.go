// Package drugname maps raw classifier labels to human-readable drug names.
package drugname

import "strings"

// Normalize extracts the drug name from a raw classifier label.
//
// Labels are underscore-delimited: a leading code token, the drug name
// (possibly itself containing underscores), and a trailing dosage token.
// With three or more tokens the middle tokens are the name; with exactly
// two the second token is; bare labels pass through unchanged.
func Normalize(raw string) string {
	parts := strings.Split(raw, "_")
	if len(parts) >= 3 {
		core := strings.Join(parts[1:len(parts)-1], "_")
		if core == "" {
			return parts[1]
		}
		return core
	}
	if len(parts) == 2 {
		return parts[1]
	}
	return raw
}
