package observability

import (
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskCPF masks a CPF for logging, keeping the first three digits and the
// check digits. Punctuation is ignored.
func MaskCPF(cpf string) string {
	digits := utils.OnlyDigits(cpf)
	if len(digits) != 11 {
		return "***.***.***-**"
	}
	return digits[:3] + ".***.***-" + digits[9:]
}

// MaskCredentials hides every value of a credential map, keeping only the keys.
func MaskCredentials(data map[string]string) map[string]string {
	masked := make(map[string]string, len(data))
	for k, v := range data {
		if v == "" {
			masked[k] = ""
			continue
		}
		masked[k] = "********"
	}
	return masked
}
