// File: internal/domain/phone.go
package domain

import "strings"

const (
	phoneMinDigits = 7
	phoneMaxDigits = 15
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone turns raw user input into the canonical digits-only form
// used as the identity key for codes and users.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", NewMissingFieldError("phone_number")
	}
	phone = phoneSeparators.Replace(phone)
	phone = strings.TrimPrefix(phone, "+")

	if len(phone) < phoneMinDigits || len(phone) > phoneMaxDigits {
		return "", NewValidationError("phone_number", "phone number must have 7 to 15 digits")
	}
	for _, ch := range phone {
		if ch < '0' || ch > '9' {
			return "", NewValidationError("phone_number", "phone number must contain digits only")
		}
	}
	return phone, nil
}
