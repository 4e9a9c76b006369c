package whatsapp

import (
	"net/url"
	"strings"
)

// NormalizePhone strips formatting from a phone number and prefixes the
// country calling code when the number is written in local form
// (leading zero). Returns "" when nothing usable remains.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	if strings.HasPrefix(digits, "0") {
		digits = countryCode + strings.TrimLeft(digits, "0")
	}
	return digits
}

// Link builds a wa.me deep link that opens a chat with the given number,
// pre-filled with the message. The caller is expected to open it in a new
// browser context; there is no delivery confirmation.
func Link(phone, countryCode, message string) string {
	digits := NormalizePhone(phone, countryCode)
	if digits == "" {
		return ""
	}

	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
