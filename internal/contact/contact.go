// Package contact holds the input rules shared by checkout and OTP sign-in.
package contact

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsMobile accepts a 10-digit national mobile number starting with 6-9.
func IsMobile(s string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(s))
}

func IsPincode(s string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(s))
}

// IsIdentifier reports whether s can be used to request a sign-in code.
func IsIdentifier(s string) bool {
	return IsEmail(s) || IsMobile(s)
}

// Normalize trims an identifier and lowercases it when it is an email.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if IsEmail(s) {
		return strings.ToLower(s)
	}
	return s
}

// Mask hides most of an identifier for log output.
func Mask(s string) string {
	if at := strings.IndexByte(s, '@'); at > 0 {
		return s[:1] + "***" + s[at:]
	}
	if len(s) > 4 {
		return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
	}
	return "****"
}
