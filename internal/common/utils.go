package common

import "strings"

// hasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Mask keeps the first keep characters of a secret and hides the rest.
// Absent secrets come back as "not set" so operators can tell absence from
// redaction. Secrets shorter than keep are fully hidden.
func Mask(s string, keep int) string {
	if s == "" {
		return "not set"
	}
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + "****"
}
