package validation

import "regexp"

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
)

var specialChars = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-+=\[\]\\/;'~` + "`" + `]`)

// HasSpecialChar checks if a string contains at least one special character
func HasSpecialChar(s string) bool {
	return specialChars.MatchString(s)
}

// StrongPassword reports whether the password satisfies the account policy.
func StrongPassword(p string) bool {
	return len(p) >= MinPasswordLength && len(p) <= MaxPasswordLength && HasSpecialChar(p)
}
