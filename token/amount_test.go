package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.5", FormatAmount(1_500_000, 6))
	assert.Equal(t, "0", FormatAmount(0, 9))
	assert.Equal(t, "1000", FormatAmount(1000, 0))
	assert.Equal(t, "0.000001", FormatAmount(1, 6))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), v)

	v, err = ParseAmount("18446744073709551615", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), v)

	_, err = ParseAmount("18446744073709551616", 0)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = ParseAmount("0.0000001", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("-1", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("abc", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
