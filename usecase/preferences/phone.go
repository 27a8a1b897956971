package preferences

import "strings"

// ToE164BR normalizes a Brazilian phone number to E.164. Numbers without the
// country code get 55 prepended; 12-digit numbers get the mobile 9 inserted
// after the area code. ok is false when the result is not 12 to 14 digits.
func ToE164BR(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", false
	}
	full := digits
	if !strings.HasPrefix(full, "55") {
		full = "55" + full
	}
	if len(full) == 12 {
		full = full[:4] + "9" + full[4:]
	}
	if len(full) < 12 || len(full) > 14 {
		return "", false
	}
	return "+" + full, true
}
