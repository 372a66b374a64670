// Package phone normalizes user-supplied phone numbers to E.164 so the same
// subscriber always maps onto the same account row and redis keys.
package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers entered without a country prefix.
const DefaultRegion = "IN"

// Normalize parses the input and returns its E.164 form.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone number is required")
	}

	parsed, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return "", fmt.Errorf("parsing phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("phone number is not valid")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
