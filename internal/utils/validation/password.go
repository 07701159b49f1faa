package validation

import "unicode"

// bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

func init() {
	Register("password", StrongPassword)
}

// StrongPassword reports whether s fits bcrypt and mixes in at least one
// symbol or punctuation mark.
func StrongPassword(s string) bool {
	if len(s) < MinPasswordLen || len(s) > MaxPasswordLen {
		return false
	}
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}
