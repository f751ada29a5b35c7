package services

import (
	"math"
	"testing"

	"github.com/prefeitura-sp/app-sicap/internal/mapping"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet"
	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet/spreadsheettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTable(t *testing.T) *mapping.Table {
	t.Helper()
	table, err := mapping.Load("../mapping/testdata/mapeamentos.json")
	require.NoError(t, err)
	return table
}

func textCells(values ...string) []spreadsheet.Cell {
	cells := make([]spreadsheet.Cell, len(values))
	for i, v := range values {
		cells[i] = spreadsheet.TextCell(v)
	}
	return cells
}

func companySheet(cells ...spreadsheet.Cell) *spreadsheet.Sheet {
	return &spreadsheet.Sheet{
		Name:    spreadsheet.CompanySheet,
		Headers: []string{"Razao Social Empresa", "CNPJ Empresa", "Valor Bruto NF", "Nº Nota Fiscal", "Valor Liquido"},
		Rows:    []spreadsheet.Row{{Number: 2, Cells: cells}},
	}
}

func TestBuildCompany(t *testing.T) {
	sheet := companySheet(
		spreadsheet.TextCell(" Clínica Exemplo LTDA "),
		spreadsheet.TextCell("11.222.333/0001-81"),
		spreadsheet.TextCell("R$ 1.000,00"),
		spreadsheet.NumberCell(123),
		spreadsheet.NumberCell(900.5),
	)

	company, err := BuildCompany(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Clínica Exemplo LTDA", company.RazaoSocialEmpresa)
	assert.Equal(t, "11.222.333/0001-81", company.CnpjEmpresa)
	assert.Equal(t, 1000.0, company.ValorBrutoNf)
	assert.Equal(t, "123", company.NumNotaFiscal)
	assert.Equal(t, 900.5, company.ValorLiquido)
	assert.Zero(t, company.ID, "ids are filled by the pipeline")
}

func TestBuildCompany_InvoiceNumber(t *testing.T) {
	tests := []struct {
		name    string
		cell    spreadsheet.Cell
		want    string
		wantErr bool
	}{
		{name: "integral number", cell: spreadsheet.NumberCell(4567), want: "4567"},
		{name: "fractional number truncates", cell: spreadsheet.NumberCell(4567.9), want: "4567"},
		{name: "decimal text", cell: spreadsheet.TextCell("123.0"), want: "123"},
		{name: "padded text", cell: spreadsheet.TextCell(" 88 "), want: "88"},
		{name: "letters", cell: spreadsheet.TextCell("NF-12"), wantErr: true},
		{name: "blank", cell: spreadsheet.TextCell(""), wantErr: true},
		{name: "not a number", cell: spreadsheet.TextCell("NaN"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := companySheet(
				spreadsheet.TextCell("Empresa"),
				spreadsheet.TextCell("11222333000181"),
				spreadsheet.NumberCell(1),
				tt.cell,
				spreadsheet.NumberCell(1),
			)

			company, err := BuildCompany(sheet)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrCompanyData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, company.NumNotaFiscal)
		})
	}
}

func TestBuildCompany_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		sheet := &spreadsheet.Sheet{Headers: []string{"Razao Social Empresa", "CNPJ Empresa"}}
		_, err := BuildCompany(sheet)
		assert.ErrorIs(t, err, models.ErrCompanyData)
		assert.Contains(t, err.Error(), "ValorBrutoNf")
	})

	t.Run("no data rows", func(t *testing.T) {
		sheet := companySheet()
		sheet.Rows = nil
		_, err := BuildCompany(sheet)
		assert.ErrorIs(t, err, models.ErrCompanyData)
	})

	t.Run("bad money", func(t *testing.T) {
		sheet := companySheet(
			spreadsheet.TextCell("Empresa"),
			spreadsheet.TextCell("11222333000181"),
			spreadsheet.TextCell("mil reais"),
			spreadsheet.NumberCell(1),
			spreadsheet.NumberCell(1),
		)
		_, err := BuildCompany(sheet)
		assert.ErrorIs(t, err, models.ErrCompanyData)
	})
}

func TestBuildProviders(t *testing.T) {
	table := loadTable(t)
	path := spreadsheettest.Write(t, "folha.xlsx", validCompanyRows(), [][]interface{}{
		spreadsheettest.ProviderHeaders,
		spreadsheettest.ProviderRow(" Maria da Silva ", "529.982.247-25", "UBS Centro", 1234.5),
	})

	wb, err := spreadsheet.Open(path)
	require.NoError(t, err)
	res := spreadsheet.ResolveColumns(wb.Providers.Headers, spreadsheet.ProviderFields)
	require.Empty(t, res.Missing)

	rows, err := BuildProviders(wb.Providers, res, table)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "UBS Centro", row.RawUnit)
	assert.Equal(t, "529.982.247-25", row.RawCPF)

	want := models.Provider{
		Nome:                  "Maria da Silva",
		NomeSocial:            "",
		CPF:                   "52998224725",
		DataNascimento:        "1985-03-15T00:00:00",
		AutoDeclaracaoGenero:  1,
		AutoDeclaracaoRacial:  3,
		CargoID:               101,
		NumConselhoClasse:     "CRM 12345",
		CnsDoProfissional:     "123456789012345",
		CargaHorariaSemanalID: 4,
		TurnoTrabalho:         1,
		UnidadeID:             5001,
		LinhaServicoID:        10,
		ValorPorProfissional:  1234.5,
		TipoCoordenadoria:     3,
		TipoAtividade:         8,
		Especificacao:         "",
	}
	assert.Equal(t, want, row.Record)
}

func validCompanyRows() [][]interface{} {
	return [][]interface{}{
		spreadsheettest.CompanyHeaders,
		{"Clínica Exemplo LTDA", "11.222.333/0001-81", "1000,00", "123", "900,00"},
	}
}

func TestBuildProviders_FieldConversions(t *testing.T) {
	table := loadTable(t)
	headers := []string{"Nome Completo", "CPF Funcionário", "Data Nascimento", "Unidade", "Linha de Serviço", "Valor por Profissional", "Carga Horária Semanal/Plantão"}
	sheet := &spreadsheet.Sheet{
		Name:    spreadsheet.ProvidersSheet,
		Headers: headers,
		Rows: []spreadsheet.Row{
			{Number: 2, Cells: []spreadsheet.Cell{
				spreadsheet.TextCell("João"),
				spreadsheet.NumberCell(1144477735),
				spreadsheet.NumberCell(31121),
				spreadsheet.TextCell("5002"),
				spreadsheet.NumberCell(13),
				spreadsheet.TextCell("R$ 2.500,75"),
				spreadsheet.NumberCell(40),
			}},
			{Number: 5, Cells: []spreadsheet.Cell{
				spreadsheet.TextCell("Ana"),
				spreadsheet.TextCell(""),
				spreadsheet.TextCell("data ruim"),
				spreadsheet.TextCell("ubs norte - unidade 2"),
				spreadsheet.TextCell("PS Adulto"),
				spreadsheet.TextCell(""),
				spreadsheet.TextCell("20"),
			}},
		},
	}
	res := spreadsheet.ResolveColumns(headers, spreadsheet.ProviderFields)

	rows, err := BuildProviders(sheet, res, table)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	joao := rows[0].Record
	assert.Equal(t, "01144477735", joao.CPF, "CPF is left padded to 11 digits")
	assert.Equal(t, "1985-03-15T00:00:00", joao.DataNascimento, "Excel serial date")
	assert.Equal(t, 5002, joao.UnidadeID, "numeric unit passes through")
	assert.Equal(t, 13, joao.LinhaServicoID, "numeric service line passes through")
	assert.Equal(t, 2500.75, joao.ValorPorProfissional)
	assert.Equal(t, 4, joao.CargaHorariaSemanalID)

	ana := rows[1]
	assert.Equal(t, 5, ana.Line)
	assert.Equal(t, "00000000000", ana.Record.CPF)
	assert.Equal(t, "1900-01-01T00:00:00", ana.Record.DataNascimento)
	assert.Equal(t, 5002, ana.Record.UnidadeID, "unit matched by substring")
	assert.Equal(t, 13, ana.Record.LinhaServicoID, "service line from LinhasDeServico")
	assert.Equal(t, 0.0, ana.Record.ValorPorProfissional)
	assert.Equal(t, 2, ana.Record.CargaHorariaSemanalID)
	assert.Equal(t, 0, ana.Record.CargoID, "unresolved column maps to 0")
}

func TestBuildProviders_BadMoney(t *testing.T) {
	table := loadTable(t)
	headers := []string{"Nome Completo", "Valor por Profissional"}
	sheet := &spreadsheet.Sheet{
		Headers: headers,
		Rows:    []spreadsheet.Row{{Number: 7, Cells: textCells("Ana", "dois mil")}},
	}

	_, err := BuildProviders(sheet, spreadsheet.ResolveColumns(headers, spreadsheet.ProviderFields), table)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProviderData)
	assert.Contains(t, err.Error(), "linha 7")
}

func TestBuildProviders_NaNAmountIsSanitized(t *testing.T) {
	table := loadTable(t)
	headers := []string{"Nome Completo", "Valor por Profissional"}
	sheet := &spreadsheet.Sheet{
		Headers: headers,
		Rows:    []spreadsheet.Row{{Number: 2, Cells: textCells("Ana", "NaN")}},
	}

	rows, err := BuildProviders(sheet, spreadsheet.ResolveColumns(headers, spreadsheet.ProviderFields), table)
	require.NoError(t, err)
	require.True(t, math.IsNaN(rows[0].Record.ValorPorProfissional))

	payload := &models.Payload{Prestadores: Providers(rows)}
	payload.Sanitize()
	assert.Equal(t, 0.0, payload.Prestadores[0].ValorPorProfissional)
}
