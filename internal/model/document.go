// Package model holds the shared document and scan types passed between the
// extraction pipeline stages.
package model

import (
	"strings"

	"github.com/otelkit/docscan/internal/mrz"
)

// DocumentType classifies a physical identity document.
type DocumentType string

const (
	DocTypeNationalID     DocumentType = "national_id"
	DocTypePassport       DocumentType = "passport"
	DocTypeDriversLicense DocumentType = "drivers_license"
	DocTypeLegacyID       DocumentType = "legacy_id"
	DocTypeOther          DocumentType = "other"
)

// ExtractedDocument is one physical identity document's fields as returned by
// an extraction provider. String fields hold "" when the provider could not
// read them; dates are ISO 8601.
type ExtractedDocument struct {
	Valid          bool         `json:"is_valid"`
	Type           DocumentType `json:"document_type"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	NationalID     string       `json:"national_id"`
	DocumentNumber string       `json:"document_number"`
	BirthDate      string       `json:"birth_date"`
	BirthPlace     string       `json:"birth_place"`
	Gender         string       `json:"gender"` // "M", "F" or empty
	Nationality    string       `json:"nationality"`
	ExpiryDate     string       `json:"expiry_date"`
	IssueDate      string       `json:"issue_date"`
	FatherName     string       `json:"father_name"`
	MotherName     string       `json:"mother_name"`
	Address        string       `json:"address"`
	Warnings       []string     `json:"warnings,omitempty"`
	RawText        string       `json:"raw_text,omitempty"`
	MRZ            *mrz.Record  `json:"mrz,omitempty"`
}

// NormalizeType coerces free-form provider type strings onto the DocumentType
// enum, defaulting to "other".
func NormalizeType(s string) DocumentType {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case DocTypeNationalID, DocTypePassport, DocTypeDriversLicense, DocTypeLegacyID:
		return DocumentType(strings.ToLower(strings.TrimSpace(s)))
	case "id_card", "identity_card":
		return DocTypeNationalID
	default:
		return DocTypeOther
	}
}
