// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
	BcryptCost        = 10
	// SpecialChars lists the characters that satisfy the special-character rule.
	SpecialChars = "!@#$%^&*"
)

var (
	ErrPasswordTooShort  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong   = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoSpecial = errors.New("password must contain at least one special character (" + SpecialChars + ")")
	ErrPasswordCommon    = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"password!":  {},
	"password@1": {},
	"qwerty!23":  {},
	"welcome@1":  {},
	"admin@123":  {},
	"letmein!1":  {},
	"iloveyou!":  {},
	"p@ssw0rd":   {},
}

// ValidatePassword enforces the account password rules.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return ErrPasswordCommon
	}
	if !strings.ContainsFunc(pw, unicode.IsUpper) {
		return ErrPasswordNoUpper
	}
	if !strings.ContainsAny(pw, SpecialChars) {
		return ErrPasswordNoSpecial
	}
	return nil
}

// PasswordRules describes the rules for display next to a password field.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters, with one uppercase letter and one of %s",
		MinPasswordLength, SpecialChars)
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// InDomain reports whether email ends in @domain. An empty domain accepts
// every address.
func InDomain(email, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+domain)
}
