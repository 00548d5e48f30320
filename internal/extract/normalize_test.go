package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/model"
)

func TestNormalize_DocumentsEnvelope(t *testing.T) {
	raw := `{"documents":[{"is_valid":true,"document_type":"passport","first_name":" Anna ","last_name":"Eriksson","gender":"f"}]}`

	docs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Valid)
	assert.Equal(t, model.DocTypePassport, docs[0].Type)
	assert.Equal(t, "Anna", docs[0].FirstName)
	assert.Equal(t, "F", docs[0].Gender)
}

func TestNormalize_BareDocumentObject(t *testing.T) {
	raw := `{"is_valid":true,"document_type":"id_card","national_id":"10000000146"}`

	docs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, model.DocTypeNationalID, docs[0].Type)
	assert.Equal(t, "10000000146", docs[0].NationalID)
}

func TestNormalize_MarkdownFenced(t *testing.T) {
	raw := "```json\n{\"documents\":[{\"is_valid\":false,\"document_type\":\"other\"}]}\n```"

	docs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, model.DocTypeOther, docs[0].Type)
}

func TestNormalize_UnknownTypeCoerced(t *testing.T) {
	raw := `{"documents":[{"document_type":"residence_permit"}]}`

	docs, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, model.DocTypeOther, docs[0].Type)
}

func TestNormalize_EmptyEnvelope(t *testing.T) {
	docs, err := Normalize(`{"documents":[]}`)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNormalize_Invalid(t *testing.T) {
	_, err := Normalize("I could not read the document, sorry.")
	assert.Error(t, err)

	_, err = Normalize("")
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
