// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/iwvelando/credit-wizard/pkg/constants"
)

var (
	validate = validator.New()

	personNamePattern  = regexp.MustCompile(`^[\p{L}][\p{L} '\-’]*$`)
	areaCodePattern    = regexp.MustCompile(`^\+?\d{1,4}$`)
	swissPostalPattern = regexp.MustCompile(`^\d{4}$`)
	postalPattern      = regexp.MustCompile(`^[A-Za-z0-9]{3,10}$`)
	phoneSeparators    = strings.NewReplacer(" ", "", "-", "", ".", "", "/", "", "(", "", ")", "")
	numberSeparators   = strings.NewReplacer("'", "", "’", "", " ", "", " ", "", "_", "")
)

// Phone number digit bounds after separators are stripped.
const (
	MinPhoneDigits = 7
	MaxPhoneDigits = 15
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// IsBlank reports whether the value is empty once whitespace is trimmed.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// IsPersonName accepts letters, spaces, hyphens and apostrophes, at least two characters.
func IsPersonName(value string) bool {
	trimmed := strings.TrimSpace(value)
	return utf8.RuneCountInString(trimmed) >= 2 && personNamePattern.MatchString(trimmed)
}

// IsEmail checks the local@domain.tld shape.
func IsEmail(value string) bool {
	trimmed := strings.TrimSpace(value)
	if err := validate.Var(trimmed, "required,email"); err != nil {
		return false
	}
	at := strings.LastIndex(trimmed, "@")
	domain := trimmed[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// PhoneDigits strips separators and an optional leading plus. The second
// return value is false when anything but digits remains.
func PhoneDigits(value string) (string, bool) {
	stripped := phoneSeparators.Replace(strings.TrimSpace(value))
	stripped = strings.TrimPrefix(stripped, "+")
	if stripped == "" {
		return "", false
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return stripped, false
		}
	}
	return stripped, true
}

// IsPhoneNumber accepts 7 to 15 digits once separators are removed.
func IsPhoneNumber(value string) bool {
	digits, ok := PhoneDigits(value)
	return ok && len(digits) >= MinPhoneDigits && len(digits) <= MaxPhoneDigits
}

// IsAreaCode accepts an international dialling prefix such as +41 or 0041's short form 41.
func IsAreaCode(value string) bool {
	return areaCodePattern.MatchString(strings.TrimSpace(value))
}

// IsSwitzerland reports whether a country value designates Switzerland in any
// of the site languages or as an ISO code.
func IsSwitzerland(country string) bool {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "ch", "che", "switzerland", "svizzera", "schweiz", "suisse":
		return true
	}
	return false
}

// IsPostalCode applies the Swiss four-digit rule or the generic 3-10 alphanumeric rule.
func IsPostalCode(code, country string) bool {
	trimmed := strings.TrimSpace(code)
	if IsSwitzerland(country) {
		return swissPostalPattern.MatchString(trimmed)
	}
	return postalPattern.MatchString(trimmed)
}

// ParseNumber parses user-typed amounts, tolerating Swiss thousands separators
// ("5'000.50") and a decimal comma.
func ParseNumber(value string) (float64, error) {
	cleaned := numberSeparators.Replace(strings.TrimSpace(value))
	if strings.Count(cleaned, ",") == 1 && !strings.Contains(cleaned, ".") {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	if cleaned == "" {
		return 0, fmt.Errorf("empty number")
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", value, err)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return n, nil
}

// ParseWholeNumber parses a non-fractional number such as a tenure in months.
func ParseWholeNumber(value string) (int, error) {
	cleaned := numberSeparators.Replace(strings.TrimSpace(value))
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid whole number %q: %w", value, err)
	}
	return n, nil
}
