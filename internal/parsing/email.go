package parsing

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims the address and reports whether it looks like an
// address. Callers keep the trimmed value either way.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}
	return email, emailPattern.MatchString(email)
}
