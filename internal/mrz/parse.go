package mrz

import (
	"regexp"
	"strings"
)

const (
	td3LineLen = 44
	td1LineLen = 30
)

// candidateLine matches a plausible MRZ line after whitespace stripping.
var candidateLine = regexp.MustCompile(`^[A-Z0-9<]{28,44}$`)

// ParseTD3 decodes a passport MRZ: exactly 2 lines of 44 characters, line 1
// starting with 'P'. Returns nil if the structural preconditions fail; check
// digit mismatches are recorded on the returned record, not treated as
// failure.
func ParseTD3(lines []string) *Record {
	if len(lines) != 2 || len(lines[0]) != td3LineLen || len(lines[1]) != td3LineLen {
		return nil
	}
	l1, l2 := lines[0], lines[1]
	if l1[0] != 'P' {
		return nil
	}

	first, last := extractNames(l1[5:44])

	docNum := l2[0:9]
	birth := l2[13:19]
	expiry := l2[21:27]

	rec := &Record{
		Format:         FormatTD3,
		DocumentType:   trimFillers(l1[0:2]),
		IssuingCountry: trimFillers(l1[2:5]),
		FirstName:      first,
		LastName:       last,
		DocumentNumber: trimFillers(docNum),
		Nationality:    trimFillers(l2[10:13]),
		BirthDate:      parseDate(birth),
		Gender:         parseGender(l2[20]),
		ExpiryDate:     parseDate(expiry),
		PersonalNumber: trimFillers(l2[28:42]),
		RawLines:       []string{l1, l2},

		DocumentNumberCheckOK: ValidateCheckDigit(docNum, l2[9]),
		BirthDateCheckOK:      ValidateCheckDigit(birth, l2[19]),
		ExpiryDateCheckOK:     ValidateCheckDigit(expiry, l2[27]),
	}
	rec.AllChecksPassed = rec.DocumentNumberCheckOK && rec.BirthDateCheckOK && rec.ExpiryDateCheckOK
	return rec
}

// ParseTD1 decodes an ID-card MRZ: exactly 3 lines of 30 characters.
// Returns nil on structural failure.
func ParseTD1(lines []string) *Record {
	if len(lines) != 3 {
		return nil
	}
	for _, l := range lines {
		if len(l) != td1LineLen {
			return nil
		}
	}
	l1, l2, l3 := lines[0], lines[1], lines[2]

	first, last := extractNames(l3)

	docNum := l1[5:14]
	birth := l2[0:6]
	expiry := l2[8:14]

	rec := &Record{
		Format:         FormatTD1,
		DocumentType:   trimFillers(l1[0:2]),
		IssuingCountry: trimFillers(l1[2:5]),
		FirstName:      first,
		LastName:       last,
		DocumentNumber: trimFillers(docNum),
		Nationality:    trimFillers(l2[15:18]),
		BirthDate:      parseDate(birth),
		Gender:         parseGender(l2[7]),
		ExpiryDate:     parseDate(expiry),
		PersonalNumber: trimFillers(l1[15:30]),
		RawLines:       []string{l1, l2, l3},

		DocumentNumberCheckOK: ValidateCheckDigit(docNum, l1[14]),
		BirthDateCheckOK:      ValidateCheckDigit(birth, l2[6]),
		ExpiryDateCheckOK:     ValidateCheckDigit(expiry, l2[14]),
	}
	rec.AllChecksPassed = rec.DocumentNumberCheckOK && rec.BirthDateCheckOK && rec.ExpiryDateCheckOK
	return rec
}

// DetectAndParse scans free text (typically raw OCR output) for embedded MRZ
// lines and parses them. Whitespace inside lines is stripped first since OCR
// engines habitually insert spaces between fillers. TD3 is tried before TD1.
// Returns nil when no parsable MRZ is present.
func DetectAndParse(text string) *Record {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		stripped := stripWhitespace(line)
		if candidateLine.MatchString(stripped) {
			candidates = append(candidates, stripped)
		}
	}

	if td3 := linesOfLength(candidates, td3LineLen, 2); td3 != nil {
		if rec := ParseTD3(td3); rec != nil {
			return rec
		}
	}
	if td1 := linesOfLength(candidates, td1LineLen, 3); td1 != nil {
		if rec := ParseTD1(td1); rec != nil {
			return rec
		}
	}
	return nil
}

// linesOfLength returns the first n candidate lines of exactly the given
// length, or nil if fewer exist.
func linesOfLength(lines []string, length, n int) []string {
	var out []string
	for _, l := range lines {
		if len(l) == length {
			out = append(out, l)
			if len(out) == n {
				return out
			}
		}
	}
	return nil
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
