package handler

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

var errInvalidPhone = errors.New("invalid phone number")

// normalizePhone parses raw in the shop's default region and returns it in E.164 form.
// An empty number stays empty.
func normalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", errInvalidPhone
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", errInvalidPhone
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
