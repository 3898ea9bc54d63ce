package utils

import "strings"

// NormalizePhone reduces a phone number to the 10-digit form carriers expect:
// non-digits are stripped, a 12-digit number with the "91" country code loses
// the prefix, anything else keeps its last 10 digits.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if len(d) == 12 && strings.HasPrefix(d, "91") {
		return d[2:]
	}
	if len(d) > 10 {
		return d[len(d)-10:]
	}
	return d
}
