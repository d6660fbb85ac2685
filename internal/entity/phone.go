package entity

import (
	"regexp"
	"strings"
)

const maxPhoneDigits = 11

var nonDigit = regexp.MustCompile(`\D`)

// FormatPhone applies the WhatsApp input mask: "(DD) NNNNN-NNNN".
// The first two digits are the area code, the next (up to) five the prefix
// and the remaining (up to) four the suffix. Digits past the eleventh are
// dropped. Formatting an already formatted value returns it unchanged.
func FormatPhone(value string) string {
	digits := nonDigit.ReplaceAllString(value, "")
	if len(digits) > maxPhoneDigits {
		digits = digits[:maxPhoneDigits]
	}

	if len(digits) <= 2 {
		return digits
	}

	area, rest := digits[:2], digits[2:]
	prefix, suffix := rest, ""
	if len(rest) > 5 {
		prefix, suffix = rest[:5], rest[5:]
	}

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(area)
	b.WriteString(") ")
	b.WriteString(prefix)
	if suffix != "" {
		b.WriteString("-")
		b.WriteString(suffix)
	}
	return b.String()
}

// PhoneDigits strips the mask, e.g. for CRM lookups.
func PhoneDigits(value string) string {
	return nonDigit.ReplaceAllString(value, "")
}
