package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// OnlyDigits removes every non-digit character from s.
func OnlyDigits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// NormalizeCPF strips formatting and left-pads the result with zeros to 11 digits.
func NormalizeCPF(s string) string {
	digits := OnlyDigits(s)
	if len(digits) < 11 {
		digits = strings.Repeat("0", 11-len(digits)) + digits
	}
	return digits
}

// ValidateCPF validates a CPF number.
// It checks if the CPF has 11 digits, rejects repeated-digit sequences and
// validates both mod-11 check digits.
func ValidateCPF(cpf string) bool {
	cpf = OnlyDigits(cpf)
	if len(cpf) != 11 || allSameDigit(cpf) {
		return false
	}

	first := cpfCheckDigit(cpf[:9])
	second := cpfCheckDigit(cpf[:9] + string(rune('0'+first)))

	return int(cpf[9]-'0') == first && int(cpf[10]-'0') == second
}

// cpfCheckDigit computes ((Σ d[i]·w) · 10) mod 11 with weights starting at len+1;
// a remainder of 10 maps to 0.
func cpfCheckDigit(digits string) int {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weight
		weight--
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}

// ValidateCNPJ validates a CNPJ number
// It checks if the CNPJ has 14 digits and validates the check digits
func ValidateCNPJ(cnpj string) bool {
	cnpj = OnlyDigits(cnpj)
	if len(cnpj) != 14 || allSameDigit(cnpj) {
		return false
	}

	first := cnpjCheckDigit(cnpj[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	second := cnpjCheckDigit(cnpj[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})

	return int(cnpj[12]-'0') == first && int(cnpj[13]-'0') == second
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i := range weights {
		sum += int(digits[i]-'0') * weights[i]
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
