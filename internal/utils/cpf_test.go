package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		cpf   string
		valid bool
	}{
		// Valid CPFs
		{name: "Valid CPF without formatting", cpf: "12345678909", valid: true},
		{name: "Valid CPF with formatting", cpf: "123.456.789-09", valid: true},
		{name: "Valid CPF - real example 1", cpf: "11144477735", valid: true},
		{name: "Valid CPF - real example 2", cpf: "52998224725", valid: true},
		{name: "Valid CPF with spaces", cpf: " 111 444 777 35 ", valid: true},

		// Invalid CPFs
		{name: "Invalid CPF - wrong check digit", cpf: "12345678900", valid: false},
		{name: "Invalid CPF - wrong second check digit", cpf: "11144477736", valid: false},
		{name: "Invalid CPF - all zeros", cpf: "00000000000", valid: false},
		{name: "Invalid CPF - all ones", cpf: "11111111111", valid: false},
		{name: "Invalid CPF - sequential digits", cpf: "12345678910", valid: false},
		{name: "Invalid CPF - too short", cpf: "123456789", valid: false},
		{name: "Invalid CPF - too long", cpf: "123456789012", valid: false},
		{name: "Invalid CPF - empty string", cpf: "", valid: false},
		{name: "Invalid CPF - only letters", cpf: "abcdefghijk", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCPF(tt.cpf))
		})
	}
}

// reference implementation with the textbook 11 - (sum mod 11) rule
func referenceCPF(cpf string) bool {
	if len(cpf) != 11 || allSameDigit(cpf) {
		return false
	}
	digit := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cpf[i]-'0') * (n + 1 - i)
		}
		rem := sum % 11
		if rem < 2 {
			return 0
		}
		return 11 - rem
	}
	return digit(9) == int(cpf[9]-'0') && digit(10) == int(cpf[10]-'0')
}

func TestValidateCPF_MatchesReference(t *testing.T) {
	base := []string{"111444777", "529982247", "123456789", "987654321", "000000001", "390533447"}
	for _, prefix := range base {
		for suffix := 0; suffix < 100; suffix++ {
			cpf := prefix + string(rune('0'+suffix/10)) + string(rune('0'+suffix%10))
			assert.Equal(t, referenceCPF(cpf), ValidateCPF(cpf), "cpf %s", cpf)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"111.444.777-35", "11144477735"},
		{"1144477735", "01144477735"},
		{"", "00000000000"},
		{"123456789012", "123456789012"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCPF(tt.input))
		})
	}
}

func TestValidateCNPJ(t *testing.T) {
	tests := []struct {
		name  string
		cnpj  string
		valid bool
	}{
		{name: "Valid CNPJ without formatting", cnpj: "11222333000181", valid: true},
		{name: "Valid CNPJ with formatting", cnpj: "11.222.333/0001-81", valid: true},
		{name: "Invalid CNPJ - wrong check digit", cnpj: "11222333000182", valid: false},
		{name: "Invalid CNPJ - all same", cnpj: "11111111111111", valid: false},
		{name: "Invalid CNPJ - too short", cnpj: "1122233300018", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCNPJ(tt.cnpj))
		})
	}
}
