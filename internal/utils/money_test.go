package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"brazilian thousands and decimals", "1.234,56", 1234.56},
		{"international thousands and decimals", "1,234.56", 1234.56},
		{"currency symbol", "R$ 10,50", 10.5},
		{"lone comma is decimal", "1000,00", 1000},
		{"plain integer", "250", 250},
		{"plain decimal point", "99.9", 99.9},
		{"blank", "", 0},
		{"whitespace only", "   ", 0},
		{"several thousands separators", "R$1.000.000,01", 1000000.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "R$", "12,34,56a"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMoney(input)
			assert.ErrorIs(t, err, ErrInvalidMoney)
		})
	}
}

func TestParseMoney_NonFiniteText(t *testing.T) {
	got, err := ParseMoney("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}
