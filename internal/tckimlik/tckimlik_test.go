package tckimlik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	for _, num := range []string{"10000000146", "12345678950"} {
		res := Validate(num)
		assert.True(t, res.Valid, "expected %s to validate", num)
		assert.Empty(t, res.Errors)
		for name, ok := range res.Checks {
			assert.True(t, ok, "check %s should pass for %s", name, num)
		}
	}
}

func TestValidate_SingleDigitMutation(t *testing.T) {
	const valid = "10000000146"
	for pos := 0; pos < len(valid); pos++ {
		mutated := []byte(valid)
		mutated[pos] = '0' + (mutated[pos]-'0'+1)%10
		res := Validate(string(mutated))
		assert.False(t, res.Valid, "mutation at position %d should invalidate: %s", pos, mutated)
		assert.NotEmpty(t, res.Errors)
	}
}

func TestValidate_WrongLength(t *testing.T) {
	for _, num := range []string{"", "1", "1000000014", "100000001461"} {
		res := Validate(num)
		require.False(t, res.Valid)
		assert.False(t, res.Checks[CheckLength])
		// Later stages never reached.
		assert.False(t, res.Checks[CheckNumeric])
		assert.False(t, res.Checks[CheckDigit10])
		assert.False(t, res.Checks[CheckDigit11])
		assert.NotEmpty(t, res.Errors)
	}
}

func TestValidate_NonNumeric(t *testing.T) {
	res := Validate("1000000014X")
	require.False(t, res.Valid)
	assert.True(t, res.Checks[CheckLength])
	assert.False(t, res.Checks[CheckNumeric])
	assert.False(t, res.Checks[CheckFirstDigit])
	assert.False(t, res.Checks[CheckDigit10])
}

func TestValidate_LeadingZero(t *testing.T) {
	res := Validate("01000000146")
	require.False(t, res.Valid)
	assert.True(t, res.Checks[CheckLength])
	assert.True(t, res.Checks[CheckNumeric])
	assert.False(t, res.Checks[CheckFirstDigit])
	assert.False(t, res.Checks[CheckDigit10])
	assert.False(t, res.Checks[CheckDigit11])
}

func TestValidate_ChecksumStages(t *testing.T) {
	// Correct structure but wrong 10th digit.
	res := Validate("10000000156")
	require.False(t, res.Valid)
	assert.True(t, res.Checks[CheckFirstDigit])
	assert.False(t, res.Checks[CheckDigit10])
	assert.False(t, res.Checks[CheckDigit11])

	// Correct through the 10th digit, wrong 11th.
	res = Validate("10000000147")
	require.False(t, res.Valid)
	assert.True(t, res.Checks[CheckDigit10])
	assert.False(t, res.Checks[CheckDigit11])
}
