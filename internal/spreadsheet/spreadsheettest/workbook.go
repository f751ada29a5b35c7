// Package spreadsheettest builds payroll workbooks for tests.
package spreadsheettest

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// CompanyHeaders is the header line of a well-formed company sheet.
var CompanyHeaders = []interface{}{"Razao Social Empresa", "CNPJ Empresa", "Valor Bruto NF", "Nº Nota Fiscal", "Valor Liquido"}

// ProviderHeaders is the header line of a well-formed provider sheet.
var ProviderHeaders = []interface{}{
	"Nome Completo", "Nome Social", "CPF Funcionário", "Data Nascimento",
	"Autodeclaração de Gênero", "Autodeclaração Racial", "Categoria Profissional",
	"Nº Conselho de Classe", "CNS do Profissional", "Carga Horária Semanal/Plantão",
	"Turno de Trabalho", "Unidade", "Linha de Serviço", "Valor por Profissional",
	"Tipo de Coordenadoria", "Tipo de Atividade",
}

// ProviderRow returns a provider row matching ProviderHeaders with the given
// unit, CPF and amount; the remaining columns hold mappable values.
func ProviderRow(name, cpf, unit string, amount interface{}) []interface{} {
	return []interface{}{
		name, "", cpf, "15/03/1985",
		"Feminino", "Parda", "Médico Clínico",
		"CRM 12345", "123456789012345", "40",
		"Diurno", unit, "Pronto Socorro", amount,
		"x", "x",
	}
}

// Write saves a workbook with the given rows on sheets "600" and "610" and
// returns its path. A nil slice omits that sheet.
func Write(t testing.TB, name string, company, providers [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := "600"
	if company == nil {
		first = "610"
	}
	if err := f.SetSheetName("Sheet1", first); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if company != nil {
		writeRows(t, f, "600", company)
		if providers != nil {
			if _, err := f.NewSheet("610"); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
	}
	if providers != nil {
		writeRows(t, f, "610", providers)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeRows(t testing.TB, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if row == nil {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}
}
