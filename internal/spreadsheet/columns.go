package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

// Field is an expected column: the payload key it feeds and a header example
// used to find it.
type Field struct {
	Key     string
	Example string
}

// ProviderFields are the columns expected in the provider sheet.
var ProviderFields = []Field{
	{Key: "Nome", Example: "Nome Completo"},
	{Key: "NomeSocial", Example: "Nome Social"},
	{Key: "CPF", Example: "CPF Funcionário"},
	{Key: "DataNascimento", Example: "Data Nascimento"},
	{Key: "AutoDeclaracaoGenero", Example: "Autodeclaração de Gênero"},
	{Key: "AutoDeclaracaoRacial", Example: "Autodeclaração Racial"},
	{Key: "CargoId", Example: "Categoria Profissional"},
	{Key: "NumConselhoClasse", Example: "Nº Conselho de Classe"},
	{Key: "CnsDoProfissional", Example: "Cns Do Profissional"},
	{Key: "CargaHorariaSemanalId", Example: "Carga Horária Semanal/Plantão"},
	{Key: "TurnoTrabalho", Example: "Turno de Trabalho"},
	{Key: "Unidade", Example: "Unidade"},
	{Key: "LinhaServicoId", Example: "Linha de Serviço"},
	{Key: "ValorPorProfissional", Example: "Valor por Profissional"},
	{Key: "TipoCoordenadoria", Example: "Tipo de Coordenadoria"},
	{Key: "TipoAtividade", Example: "Tipo de Atividade"},
}

// CompanyFields are the columns expected in the company sheet.
var CompanyFields = []Field{
	{Key: "RazaoSocialEmpresa", Example: "Razao Social Empresa"},
	{Key: "CnpjEmpresa", Example: "CNPJ Empresa"},
	{Key: "ValorBrutoNf", Example: "Valor Bruto NF"},
	{Key: "NumNotaFiscal", Example: "Nº Nota Fiscal"},
	{Key: "ValorLiquido", Example: "Valor Liquido"},
}

// headerStrategy looks for the header matching example; strategies are tried
// in order and the first hit wins.
type headerStrategy func(headers []string, example string) (string, bool)

var headerStrategies = []headerStrategy{
	exactHeader,
	tokenHeader,
	cnsHeader,
}

// ResolveColumn returns the actual header that best matches example.
func ResolveColumn(headers []string, example string) (string, bool) {
	for _, strategy := range headerStrategies {
		if header, ok := strategy(headers, example); ok {
			return header, true
		}
	}
	return "", false
}

// exactHeader compares lower-case alphanumeric forms.
func exactHeader(headers []string, example string) (string, bool) {
	target := utils.NormalizeHeader(example)
	if target == "" {
		return "", false
	}
	for _, h := range headers {
		if utils.NormalizeHeader(h) == target {
			return h, true
		}
	}
	return "", false
}

// tokenHeader accepts the first header containing every word of the example.
func tokenHeader(headers []string, example string) (string, bool) {
	tokens := utils.HeaderTokens(example)
	if len(tokens) == 0 {
		return "", false
	}
	for _, h := range headers {
		norm := utils.NormalizeHeader(h)
		if norm == "" {
			continue
		}
		if containsAll(norm, tokens) {
			return h, true
		}
	}
	return "", false
}

// cnsHeader covers health card columns written with abbreviations.
func cnsHeader(headers []string, example string) (string, bool) {
	if !strings.Contains(utils.NormalizeHeader(example), "cns") {
		return "", false
	}
	for _, h := range headers {
		if strings.Contains(utils.NormalizeHeader(h), "cns") {
			return h, true
		}
	}
	return "", false
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// Resolution is the outcome of resolving a set of fields against a header line.
type Resolution struct {
	Columns map[string]string
	Missing []string
}

// Resolved reports whether the field key was found.
func (r Resolution) Resolved(key string) bool {
	_, ok := r.Columns[key]
	return ok
}

// ResolveColumns resolves every field independently and collects the ones not
// found as "Key (ex: Example)".
func ResolveColumns(headers []string, fields []Field) Resolution {
	res := Resolution{Columns: make(map[string]string, len(fields))}
	for _, f := range fields {
		header, ok := ResolveColumn(headers, f.Example)
		if !ok {
			res.Missing = append(res.Missing, fmt.Sprintf("%s (ex: %s)", f.Key, f.Example))
			continue
		}
		res.Columns[f.Key] = header
	}
	return res
}
