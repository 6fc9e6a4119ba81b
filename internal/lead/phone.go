package lead

import (
	"fmt"
	"net/url"
	"strings"
)

// CountryCode is prefixed to bare ten-digit Indian mobile numbers.
const CountryCode = "91"

const whatsAppBase = "https://api.whatsapp.com/send"

// NormalizePhone strips formatting from a phone number and returns its digits
// in international form without the leading plus.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")

	switch {
	case len(digits) == 10:
		return CountryCode + digits, nil
	case len(digits) >= 11 && len(digits) <= 15:
		return digits, nil
	}
	return "", fmt.Errorf("%w: invalid phone number: %q", ErrInvalid, phone)
}

// WhatsAppURL returns a click-to-chat link for phone with a prefilled message.
func WhatsAppURL(phone, message string) (string, error) {
	n, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("phone", n)
	if message != "" {
		q.Set("text", message)
	}
	return whatsAppBase + "?" + q.Encode(), nil
}

// ConfirmationMessage is the prefilled text sent when a lead opts into
// WhatsApp confirmation.
func ConfirmationMessage(name, cityName string) string {
	return fmt.Sprintf("Hi %s, thanks for reaching out to Glowheal %s. Our care team will call you shortly to confirm your appointment.",
		name, cityName)
}
