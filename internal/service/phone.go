package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is assumed for numbers written without a country code.
const DefaultPhoneRegion = "ES"

// NormalizePhone returns phone in E.164 form. An empty phone stays empty.
func NormalizePhone(field, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", NewValidationError(field, "invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
