package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		countryCode string
		want        string
	}{
		{"local number with leading zero", "012-345 6789", "60", "60123456789"},
		{"already international", "60123456789", "60", "60123456789"},
		{"formatted international", "+60 12-345 6789", "60", "60123456789"},
		{"empty", "", "60", ""},
		{"no digits at all", "call me", "60", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.phone, tt.countryCode))
		})
	}
}

func TestLink(t *testing.T) {
	link := Link("012-345 6789", "60", "Hi Aisyah, your order BK-7F3A2C is confirmed!")
	assert.Equal(t, "https://wa.me/60123456789?text=Hi+Aisyah%2C+your+order+BK-7F3A2C+is+confirmed%21", link)
}

func TestLinkWithoutMessage(t *testing.T) {
	assert.Equal(t, "https://wa.me/60123456789", Link("0123456789", "60", ""))
}

func TestLinkWithoutPhone(t *testing.T) {
	assert.Equal(t, "", Link("", "60", "hello"))
}
