// Package mrz parses ICAO 9303 machine-readable zones (TD1 and TD3 formats)
// and computes their check digits. Everything here is deterministic and total:
// malformed input yields a nil record, never an error.
package mrz

import (
	"strings"
	"time"
)

// Format identifies an MRZ layout variant.
type Format string

const (
	// FormatTD1 is the 3-line, 30-characters-per-line layout used on ID cards.
	FormatTD1 Format = "TD1"
	// FormatTD3 is the 2-line, 44-characters-per-line layout used on passports.
	FormatTD3 Format = "TD3"
)

// Record is a decoded machine-readable zone. Check-digit booleans are computed
// purely from the raw character data; a failed check is advisory, not fatal,
// since scanned strips routinely carry single-character OCR noise.
type Record struct {
	Format         Format   `json:"format"`
	DocumentType   string   `json:"document_type"`
	IssuingCountry string   `json:"issuing_country"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	DocumentNumber string   `json:"document_number"`
	Nationality    string   `json:"nationality"`
	BirthDate      string   `json:"birth_date,omitempty"`  // ISO 8601, empty if unparsable
	Gender         string   `json:"gender,omitempty"`      // "M", "F" or empty
	ExpiryDate     string   `json:"expiry_date,omitempty"` // ISO 8601, empty if unparsable
	PersonalNumber string   `json:"personal_number,omitempty"`
	RawLines       []string `json:"raw_lines"`

	DocumentNumberCheckOK bool `json:"document_number_check_ok"`
	BirthDateCheckOK      bool `json:"birth_date_check_ok"`
	ExpiryDateCheckOK     bool `json:"expiry_date_check_ok"`
	AllChecksPassed       bool `json:"all_checks_passed"`
}

// weights is the repeating multiplier cycle defined by ICAO 9303.
var weights = [3]int{7, 3, 1}

// charValue maps an MRZ character to its numeric value: digits map to
// themselves, '<' to 0, A-Z to 10-35. Returns -1 for anything else.
func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c == '<':
		return 0
	default:
		return -1
	}
}

// ComputeCheckDigit returns the ICAO check digit for data, or -1 if data
// contains a character outside the MRZ alphabet.
func ComputeCheckDigit(data string) int {
	sum := 0
	for i := 0; i < len(data); i++ {
		v := charValue(data[i])
		if v < 0 {
			return -1
		}
		sum += v * weights[i%3]
	}
	return sum % 10
}

// ValidateCheckDigit reports whether check is the correct check digit for
// data. Returns false on any parse failure (non-digit check character,
// invalid data characters).
func ValidateCheckDigit(data string, check byte) bool {
	if check < '0' || check > '9' {
		return false
	}
	want := ComputeCheckDigit(data)
	if want < 0 {
		return false
	}
	return want == int(check-'0')
}

// nowFunc allows test injection of the date-window pivot.
var nowFunc = time.Now

// parseDate decodes a YYMMDD field into an ISO 8601 date string. Two-digit
// years within ten years of the current year are read as 20xx, everything
// else as 19xx (a birth date of "45" on a live document means 1945, while an
// expiry of "31" means 2031). Returns "" on malformed input.
func parseDate(yymmdd string) string {
	if len(yymmdd) != 6 {
		return ""
	}
	for i := 0; i < 6; i++ {
		if yymmdd[i] < '0' || yymmdd[i] > '9' {
			return ""
		}
	}
	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	mm := int(yymmdd[2]-'0')*10 + int(yymmdd[3]-'0')
	dd := int(yymmdd[4]-'0')*10 + int(yymmdd[5]-'0')

	pivot := nowFunc().Year()%100 + 10
	year := 1900 + yy
	if yy <= pivot {
		year = 2000 + yy
	}

	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return ""
	}
	return time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// extractNames splits an MRZ name field on the "<<" separator. The first
// segment is the surname, the second the given name(s); internal fillers
// become spaces.
func extractNames(field string) (first, last string) {
	parts := strings.SplitN(field, "<<", 2)
	last = cleanFillers(parts[0])
	if len(parts) > 1 {
		first = cleanFillers(parts[1])
	}
	return first, last
}

// cleanFillers replaces '<' fillers with spaces and collapses the result.
func cleanFillers(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "<", " ")), " ")
}

// trimFillers strips trailing '<' fillers from a fixed-width field.
func trimFillers(s string) string {
	return strings.TrimRight(s, "<")
}

// parseGender maps the MRZ sex character to "M", "F" or empty.
func parseGender(c byte) string {
	switch c {
	case 'M':
		return "M"
	case 'F':
		return "F"
	default:
		return ""
	}
}
