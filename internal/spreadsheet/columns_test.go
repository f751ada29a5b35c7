package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		example string
		want    string
		found   bool
	}{
		{
			name:    "exact after normalization",
			headers: []string{"Nome Completo ", "cpf_funcionario"},
			example: "CPF Funcionário",
			want:    "cpf_funcionario",
			found:   true,
		},
		{
			name:    "accents and punctuation ignored",
			headers: []string{"CARGA HORARIA SEMANAL - PLANTAO"},
			example: "Carga Horária Semanal/Plantão",
			want:    "CARGA HORARIA SEMANAL - PLANTAO",
			found:   true,
		},
		{
			name:    "all example tokens contained",
			headers: []string{"Nome", "Valor total por profissional (R$)"},
			example: "Valor por Profissional",
			want:    "Valor total por profissional (R$)",
			found:   true,
		},
		{
			name:    "first header in sheet order wins",
			headers: []string{"Unidade de Lotação", "Unidade Executora"},
			example: "Unidade",
			want:    "Unidade de Lotação",
			found:   true,
		},
		{
			name:    "cns fallback",
			headers: []string{"Nome Completo", "Nº CNS"},
			example: "Cns Do Profissional",
			want:    "Nº CNS",
			found:   true,
		},
		{
			name:    "cns fallback only for health card fields",
			headers: []string{"Nº CNS"},
			example: "Turno de Trabalho",
			found:   false,
		},
		{
			name:    "empty headers are skipped",
			headers: []string{"", "   "},
			example: "Nome Social",
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveColumn(tt.headers, tt.example)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumns_CollectsMissing(t *testing.T) {
	headers := []string{"Nome Completo", "CPF", "Unidade"}

	res := ResolveColumns(headers, ProviderFields)

	assert.Equal(t, "Nome Completo", res.Columns["Nome"])
	assert.Equal(t, "Unidade", res.Columns["Unidade"])
	assert.True(t, res.Resolved("Nome"))
	assert.False(t, res.Resolved("CPF"))
	assert.Contains(t, res.Missing, "CPF (ex: CPF Funcionário)")
	assert.Contains(t, res.Missing, "TipoAtividade (ex: Tipo de Atividade)")
	assert.Len(t, res.Missing, len(ProviderFields)-2)
}

func TestResolveColumns_Idempotent(t *testing.T) {
	headers := []string{
		"Nome Completo", "Nome Social", "CPF Funcionário", "Data Nascimento",
		"Autodeclaração de Gênero", "Autodeclaração Racial", "Categoria Profissional",
		"Nº Conselho de Classe", "CNS", "Carga Horária Semanal/Plantão",
		"Turno de Trabalho", "Unidade", "Linha de Serviço", "Valor por Profissional",
		"Tipo de Coordenadoria", "Tipo de Atividade",
	}

	first := ResolveColumns(headers, ProviderFields)
	second := ResolveColumns(headers, ProviderFields)

	assert.Equal(t, first, second)
	assert.Empty(t, first.Missing)
	assert.Equal(t, "CNS", first.Columns["CnsDoProfissional"])
}
