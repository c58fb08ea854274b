package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	phoneJunkRe = regexp.MustCompile(`[^0-9+\- ]`)
	mobileRe    = regexp.MustCompile(`^01\d{9}$`)
	emailRe     = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// normalizePhone strips decoration, rewrites the +82 country prefix to the
// domestic 0 form, and regroups 11-digit mobile numbers as 3-4-4. Numbers in
// other shapes (landlines, foreign) keep their digits as-is.
func normalizePhone(v any) *string {
	raw, ok := stringValue(v)
	if !ok {
		return nil
	}
	s := strings.TrimSpace(width.Fold.String(raw))
	s = phoneJunkRe.ReplaceAllString(s, "")

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if strings.HasPrefix(strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "-", ""), "+82") {
		digits = strings.TrimPrefix(digits, "82")
		if !strings.HasPrefix(digits, "0") {
			digits = "0" + digits
		}
	}

	if digits == "" {
		return nil
	}
	if mobileRe.MatchString(digits) {
		formatted := digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
		return &formatted
	}
	return &digits
}

// normalizeEmail lowercases and trims, then accepts only a plain
// local@domain.tld shape. Anything else yields nil.
func normalizeEmail(v any) *string {
	raw, ok := stringValue(v)
	if !ok {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(width.Fold.String(raw)))
	if !emailRe.MatchString(s) {
		return nil
	}
	return &s
}
