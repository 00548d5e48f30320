package localocr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/otelkit/docscan/internal/model"
)

var (
	// Turkish national identity numbers are 11 digits with a nonzero lead.
	nationalIDPattern = regexp.MustCompile(`\b[1-9][0-9]{10}\b`)
	// Serial numbers on the new-format ID card: letter, 8 alphanumerics.
	serialPattern = regexp.MustCompile(`\b[A-Z][0-9]{2}[A-Z0-9][0-9]{5}\b`)
	// Dates printed on Turkish documents use dd.mm.yyyy.
	printedDatePattern = regexp.MustCompile(`\b([0-3][0-9])\.([01][0-9])\.((?:19|20)[0-9]{2})\b`)
)

// foldTurkish strips diacritics and dotless-i variants so labels printed as
// "DOĞUM TARİHİ" match against ASCII keys after uppercasing.
var foldTurkish = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Map(func(r rune) rune {
		switch r {
		case 'ı':
			return 'i'
		case 'I':
			return 'I'
		}
		return r
	}),
	norm.NFC,
)

func foldLabel(s string) string {
	out, _, err := transform.String(foldTurkish, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// fieldLabels maps folded label substrings to document field setters. Order
// matters: longer, more specific labels come before their prefixes.
var fieldLabels = []struct {
	labels []string
	set    func(doc *model.ExtractedDocument, value string)
}{
	{
		labels: []string{"SOYADI", "SURNAME"},
		set:    func(d *model.ExtractedDocument, v string) { d.LastName = v },
	},
	{
		labels: []string{"BABA ADI", "FATHER"},
		set:    func(d *model.ExtractedDocument, v string) { d.FatherName = v },
	},
	{
		labels: []string{"ANNE ADI", "MOTHER"},
		set:    func(d *model.ExtractedDocument, v string) { d.MotherName = v },
	},
	{
		labels: []string{"ADI", "GIVEN NAME", "NAME"},
		set:    func(d *model.ExtractedDocument, v string) { d.FirstName = v },
	},
	{
		labels: []string{"DOGUM TARIHI", "DATE OF BIRTH", "BIRTH DATE"},
		set:    func(d *model.ExtractedDocument, v string) { d.BirthDate = toISODate(v) },
	},
	{
		labels: []string{"DOGUM YERI", "PLACE OF BIRTH"},
		set:    func(d *model.ExtractedDocument, v string) { d.BirthPlace = v },
	},
	{
		labels: []string{"UYRUGU", "NATIONALITY"},
		set:    func(d *model.ExtractedDocument, v string) { d.Nationality = v },
	},
	{
		labels: []string{"SON GECERLILIK", "GECERLILIK TARIHI", "VALID UNTIL", "DATE OF EXPIRY"},
		set:    func(d *model.ExtractedDocument, v string) { d.ExpiryDate = toISODate(v) },
	},
	{
		labels: []string{"CINSIYETI", "CINSIYET", "GENDER", "SEX"},
		set:    func(d *model.ExtractedDocument, v string) { d.Gender = parseGenderValue(v) },
	},
}

// documentFromHeuristics scans raw OCR text line by line for the labeled
// fields printed on Turkish identity documents. It always returns a document;
// when nothing matched the document carries only the raw text and a warning.
func documentFromHeuristics(text string) *model.ExtractedDocument {
	doc := &model.ExtractedDocument{
		Type:    model.DocTypeOther,
		RawText: text,
	}

	if m := nationalIDPattern.FindString(text); m != "" {
		doc.NationalID = m
		doc.Type = model.DocTypeNationalID
	}
	if m := serialPattern.FindString(text); m != "" {
		doc.DocumentNumber = m
	}

	matched := 0
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		folded := foldLabel(label)
		for _, fl := range fieldLabels {
			if containsAny(folded, fl.labels) {
				fl.set(doc, strings.TrimSpace(value))
				matched++
				break
			}
		}
	}

	// A bare date with no label next to a national ID is almost always the
	// birth date on the old-format card.
	if doc.BirthDate == "" && doc.NationalID != "" {
		if m := printedDatePattern.FindStringSubmatch(text); m != nil {
			doc.BirthDate = isoFromParts(m[3], m[2], m[1])
		}
	}

	if matched == 0 && doc.NationalID == "" {
		doc.Warnings = append(doc.Warnings, "no recognizable identity fields found in OCR text")
	} else {
		doc.Valid = true
	}
	return doc
}

// splitLabel separates "LABEL: value" or "LABEL / LABEL value" OCR lines.
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	if i := strings.IndexAny(line, ":"); i > 0 && i < len(line)-1 {
		return line[:i], line[i+1:], true
	}
	// Bilingual labels end with the English variant followed by the value,
	// e.g. "SOYADI / SURNAME YILMAZ". Split after the last label word.
	if i := strings.LastIndex(line, "/"); i > 0 {
		rest := strings.TrimSpace(line[i+1:])
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			return line[:i] + "/" + fields[0], strings.Join(fields[1:], " "), true
		}
	}
	return "", "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// toISODate converts a printed dd.mm.yyyy date to ISO 8601, passing through
// values that are already ISO or unparseable.
func toISODate(v string) string {
	if m := printedDatePattern.FindStringSubmatch(v); m != nil {
		return isoFromParts(m[3], m[2], m[1])
	}
	return v
}

func isoFromParts(yyyy, mm, dd string) string {
	y, _ := strconv.Atoi(yyyy)
	m, _ := strconv.Atoi(mm)
	d, _ := strconv.Atoi(dd)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func parseGenderValue(v string) string {
	folded := strings.Fields(foldLabel(v))
	if len(folded) == 0 {
		return ""
	}
	switch first := folded[0]; {
	case first == "M", first == "E", first == "ERKEK", first == "MALE", strings.HasPrefix(first, "E/"):
		return "M"
	case first == "F", first == "K", first == "KADIN", first == "FEMALE", strings.HasPrefix(first, "K/"):
		return "F"
	}
	return ""
}
