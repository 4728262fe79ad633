package validator

import (
	"strconv"
	"strings"
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
		},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be at most " + strconv.Itoa(max) + " characters long",
		},
	}
}

// DecimalString validates that a form field parses as a decimal number.
// An empty value fails; pair with RequiredString when the field is optional
// with a default instead.
func DecimalString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			return err == nil
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid number",
		},
	}
}

// NonNegativeDecimalString validates that a form field parses as a decimal
// number greater than or equal to zero.
func NonNegativeDecimalString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			return err == nil && f >= 0
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a number greater than or equal to zero",
		},
	}
}

// NonNegativeIntString validates that a form field parses as an integer
// greater than or equal to zero.
func NonNegativeIntString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			return err == nil && n >= 0
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a whole number greater than or equal to zero",
		},
	}
}
