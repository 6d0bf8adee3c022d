// Package whatsapp renders confirmation message templates and builds wa.me
// deep links for the booking flow.
package whatsapp

import (
	"net/url"
	"regexp"
	"strings"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// RenderTemplate substitutes {{key}} placeholders by exact key match.
// Unknown placeholders are left verbatim so a malformed template degrades
// gracefully instead of failing the booking flow.
func RenderTemplate(template string, vars map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRegex.FindStringSubmatch(match)[1]
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})
}

// NormalizePhone strips everything but digits and converts a leading local
// zero to the given country code, yielding the international digits-only
// format wa.me expects.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	}
	return digits
}

// Link builds a wa.me deep link with the message percent-encoded.
func Link(phone, countryCode, message string) string {
	return "https://wa.me/" + NormalizePhone(phone, countryCode) + "?text=" + url.QueryEscape(message)
}
