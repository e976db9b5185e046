package users

import "strings"

const DefaultRole = "user"

// NormalizeEmail trims and lower-cases an address so that lookups and the
// store's uniqueness constraint agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
