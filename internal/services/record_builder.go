package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/prefeitura-sp/app-sicap/internal/mapping"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

const (
	birthDateLayout  = "2006-01-02T00:00:00"
	unknownBirthDate = "1900-01-01T00:00:00"
)

// ProviderRow is a built provider plus the raw values the validation gate
// reports back to the user.
type ProviderRow struct {
	Line           int
	Record         models.Provider
	RawUnit        string
	RawRole        string
	RawServiceLine string
	RawCPF         string
}

// BuildCompany reads the invoice block from the first data row of the company
// sheet. Id, ParceriaId and PrestacaoContaId are left for the caller.
func BuildCompany(sheet *spreadsheet.Sheet) (models.Company, error) {
	var company models.Company

	res := spreadsheet.ResolveColumns(sheet.Headers, spreadsheet.CompanyFields)
	if len(res.Missing) > 0 {
		return company, fmt.Errorf("%w: colunas ausentes: %s", models.ErrCompanyData, strings.Join(res.Missing, ", "))
	}
	if len(sheet.Rows) == 0 {
		return company, fmt.Errorf("%w: aba %s sem linhas de dados", models.ErrCompanyData, sheet.Name)
	}

	row := sheet.Rows[0]
	cell := func(key string) spreadsheet.Cell {
		return sheet.Value(row, res.Columns[key])
	}

	var err error
	company.RazaoSocialEmpresa = strings.TrimSpace(cell("RazaoSocialEmpresa").String())
	company.CnpjEmpresa = strings.TrimSpace(cell("CnpjEmpresa").String())

	if company.ValorBrutoNf, err = cell("ValorBrutoNf").Money(); err != nil {
		return company, fmt.Errorf("%w: Valor Bruto NF: %v", models.ErrCompanyData, err)
	}
	if company.ValorLiquido, err = cell("ValorLiquido").Money(); err != nil {
		return company, fmt.Errorf("%w: Valor Liquido: %v", models.ErrCompanyData, err)
	}
	if company.NumNotaFiscal, err = invoiceNumber(cell("NumNotaFiscal")); err != nil {
		return company, fmt.Errorf("%w: Nº Nota Fiscal: %v", models.ErrCompanyData, err)
	}

	return company, nil
}

// invoiceNumber renders the invoice number as an integer string, so 123.0
// becomes "123".
func invoiceNumber(c spreadsheet.Cell) (string, error) {
	n := c.Number
	if !c.Numeric {
		var err error
		n, err = strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
		if err != nil {
			return "", fmt.Errorf("%q is not a number", c.Raw)
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", fmt.Errorf("%q is not a number", c.Raw)
	}
	return strconv.FormatInt(int64(n), 10), nil
}

// BuildProviders turns every data row of the provider sheet into a record.
// Unresolved columns read as empty cells; the gate reports them.
func BuildProviders(sheet *spreadsheet.Sheet, res spreadsheet.Resolution, table *mapping.Table) ([]ProviderRow, error) {
	tipoCoordenadoria := table.Constant(mapping.CategoryTipoCoordenadoria)
	tipoAtividade := table.Constant(mapping.CategoryTipoAtividade)

	rows := make([]ProviderRow, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cell := func(key string) spreadsheet.Cell {
			return sheet.Value(row, res.Columns[key])
		}

		amount, err := cell("ValorPorProfissional").Money()
		if err != nil {
			return nil, fmt.Errorf("%w: linha %d: Valor por Profissional: %v", models.ErrProviderData, row.Number, err)
		}

		rawCPF := cell("CPF").String()
		unit := cell("Unidade")
		role := cell("CargoId")
		serviceLine := cell("LinhaServicoId")

		rows = append(rows, ProviderRow{
			Line: row.Number,
			Record: models.Provider{
				Nome:                  strings.TrimSpace(cell("Nome").String()),
				NomeSocial:            strings.TrimSpace(cell("NomeSocial").String()),
				CPF:                   utils.NormalizeCPF(rawCPF),
				DataNascimento:        birthDate(cell("DataNascimento")),
				AutoDeclaracaoGenero:  table.Lookup(cell("AutoDeclaracaoGenero"), mapping.CategoryGenero),
				AutoDeclaracaoRacial:  table.Lookup(cell("AutoDeclaracaoRacial"), mapping.CategoryRacial),
				CargoID:               table.Lookup(role, mapping.CategoryCargo),
				NumConselhoClasse:     strings.TrimSpace(cell("NumConselhoClasse").String()),
				CnsDoProfissional:     strings.TrimSpace(cell("CnsDoProfissional").String()),
				CargaHorariaSemanalID: table.Lookup(cell("CargaHorariaSemanalId"), mapping.CategoryCargaHoraria),
				TurnoTrabalho:         table.Lookup(cell("TurnoTrabalho"), mapping.CategoryTurno),
				UnidadeID:             table.Lookup(unit, mapping.CategoryUnidade),
				LinhaServicoID:        table.Lookup(serviceLine, mapping.CategoryLinhaServico),
				ValorPorProfissional:  amount,
				TipoCoordenadoria:     tipoCoordenadoria,
				TipoAtividade:         tipoAtividade,
				Especificacao:         "",
			},
			RawUnit:        strings.TrimSpace(unit.String()),
			RawRole:        strings.TrimSpace(role.String()),
			RawServiceLine: strings.TrimSpace(serviceLine.String()),
			RawCPF:         rawCPF,
		})
	}
	return rows, nil
}

func birthDate(c spreadsheet.Cell) string {
	t, ok := c.Date()
	if !ok {
		return unknownBirthDate
	}
	return t.Format(birthDateLayout)
}

// Providers extracts the records in row order.
func Providers(rows []ProviderRow) []models.Provider {
	providers := make([]models.Provider, len(rows))
	for i, r := range rows {
		providers[i] = r.Record
	}
	return providers
}
