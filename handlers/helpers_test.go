package handlers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCuisines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["North Indian", "Chinese"]`, []string{"North Indian", "Chinese"}},
		{"csv", "North Indian, Chinese", []string{"North Indian", "Chinese"}},
		{"csv with blanks", "Thai, , Korean,", []string{"Thai", "Korean"}},
		{"single value", "Italian", []string{"Italian"}},
		{"json with padding", `  ["Mexican"]  `, []string{"Mexican"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeCuisines(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCuisinesRejectsEmptyAndMalformed(t *testing.T) {
	for _, raw := range []string{"", "  ", ",,,", `["unterminated`} {
		_, err := normalizeCuisines(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestParseMoney(t *testing.T) {
	d, appErr := parseMoney("2.50", "delivery_fee")
	require.Nil(t, appErr)
	assert.True(t, d.Equal(decimal.RequireFromString("2.50")))

	// Absent value means zero, not an error.
	d, appErr = parseMoney("", "delivery_fee")
	require.Nil(t, appErr)
	assert.True(t, d.IsZero())

	_, appErr = parseMoney("abc", "delivery_fee")
	require.NotNil(t, appErr)

	_, appErr = parseMoney("-1.00", "delivery_fee")
	require.NotNil(t, appErr)
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 20, coerceInt("", 20))
	assert.Equal(t, 5, coerceInt("5", 20))
	assert.Equal(t, 0, coerceInt("0", 20))
	assert.Equal(t, 20, coerceInt("junk", 20))
	assert.Equal(t, 20, coerceInt("-3", 20))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, optionalString(""))
	assert.Nil(t, optionalString("   "))
	got := optionalString(" +911234567890 ")
	require.NotNil(t, got)
	assert.Equal(t, "+911234567890", *got)
}
