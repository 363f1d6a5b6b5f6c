// SPDX-License-Identifier: MPL-2.0

package flowset

import "strings"

// Normalize maps a display name to a lowercase identifier that is safe to use
// as a file name. Every character outside [A-Za-z0-9.] becomes '-', runs of
// '-' collapse to one, and a single leading and trailing '-' is dropped.
func Normalize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	prevDash := false
	for _, r := range name {
		if isFileNameRune(r) {
			sb.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			sb.WriteByte('-')
			prevDash = true
		}
	}
	out := strings.ToLower(sb.String())
	out = strings.TrimPrefix(out, "-")
	out = strings.TrimSuffix(out, "-")
	return out
}

func isFileNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.'
}
