// Package tckimlik validates the 11-digit Turkish national identity number
// (TC Kimlik No) against its two-stage checksum algorithm. Validation is
// total: malformed input yields a failed Result, never an error.
package tckimlik

import "fmt"

// Check names the validation stages, in evaluation order.
const (
	CheckLength     = "length"
	CheckNumeric    = "numeric"
	CheckFirstDigit = "first_digit"
	CheckDigit10    = "checksum_digit_10"
	CheckDigit11    = "checksum_digit_11"
)

// Result reports the outcome of validating a candidate number. Every stage
// has an entry in Checks; stages not reached because of an earlier failure
// remain false.
type Result struct {
	Valid  bool            `json:"valid"`
	Checks map[string]bool `json:"checks"`
	Errors []string        `json:"errors,omitempty"`
}

// Validate runs the TC Kimlik checksum algorithm on number. Structural
// violations (wrong length, non-digits, leading zero) short-circuit: the
// checksum stages are not computed and stay false in the Checks map.
func Validate(number string) Result {
	res := Result{
		Checks: map[string]bool{
			CheckLength:     false,
			CheckNumeric:    false,
			CheckFirstDigit: false,
			CheckDigit10:    false,
			CheckDigit11:    false,
		},
	}

	if len(number) != 11 {
		res.Errors = append(res.Errors, fmt.Sprintf("must be exactly 11 digits, got %d characters", len(number)))
		return res
	}
	res.Checks[CheckLength] = true

	digits := make([]int, 11)
	for i := 0; i < 11; i++ {
		c := number[i]
		if c < '0' || c > '9' {
			res.Errors = append(res.Errors, fmt.Sprintf("character %q at position %d is not a digit", c, i+1))
			return res
		}
		digits[i] = int(c - '0')
	}
	res.Checks[CheckNumeric] = true

	if digits[0] == 0 {
		res.Errors = append(res.Errors, "first digit must not be zero")
		return res
	}
	res.Checks[CheckFirstDigit] = true

	// 10th digit: ((d1+d3+d5+d7+d9)*7 - (d2+d4+d6+d8)) mod 10.
	oddSum := digits[0] + digits[2] + digits[4] + digits[6] + digits[8]
	evenSum := digits[1] + digits[3] + digits[5] + digits[7]
	d10 := ((oddSum*7-evenSum)%10 + 10) % 10
	if digits[9] != d10 {
		res.Errors = append(res.Errors, fmt.Sprintf("10th digit checksum mismatch: expected %d, got %d", d10, digits[9]))
		return res
	}
	res.Checks[CheckDigit10] = true

	// 11th digit: sum of first 10 digits mod 10.
	sum := 0
	for i := 0; i < 10; i++ {
		sum += digits[i]
	}
	d11 := sum % 10
	if digits[10] != d11 {
		res.Errors = append(res.Errors, fmt.Sprintf("11th digit checksum mismatch: expected %d, got %d", d11, digits[10]))
		return res
	}
	res.Checks[CheckDigit11] = true

	res.Valid = true
	return res
}
