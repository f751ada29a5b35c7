package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
)

// notAvailable are placeholder unit values that never count as unmapped.
var notAvailable = map[string]struct{}{
	"NAN":  {},
	"NONE": {},
	"NULL": {},
	"N/A":  {},
	"#N/A": {},
}

// RunValidationGate checks the whole batch and accumulates every defect. A
// row check is skipped when its column was not resolved, since the missing
// column is already reported.
func RunValidationGate(res spreadsheet.Resolution, rows []ProviderRow) *models.ValidationReport {
	report := &models.ValidationReport{}

	if len(res.Missing) > 0 {
		report.ColunasFaltantes = append([]string(nil), res.Missing...)
		report.Problemas = append(report.Problemas, models.FlagMissingColumns)
	}

	if res.Resolved("Unidade") {
		if units := unmappedUnits(rows); len(units) > 0 {
			report.UnidadesSemMapa = units
			report.Problemas = append(report.Problemas, models.FlagUnmappedUnits)
		}
	}

	if res.Resolved("CargoId") {
		report.CargosSemMapa = rowIssues(rows, func(r ProviderRow) (string, bool) {
			return r.RawRole, r.Record.CargoID == 0
		})
		if len(report.CargosSemMapa) > 0 {
			report.Problemas = append(report.Problemas, models.FlagUnmappedRole)
		}
	}

	if res.Resolved("LinhaServicoId") {
		report.LinhasServicoSemMapa = rowIssues(rows, func(r ProviderRow) (string, bool) {
			return r.RawServiceLine, r.Record.LinhaServicoID == 0
		})
		if len(report.LinhasServicoSemMapa) > 0 {
			report.Problemas = append(report.Problemas, models.FlagUnmappedServiceLine)
		}
	}

	if res.Resolved("CPF") {
		checkCPFs(report, rows)
	}

	return report
}

func unmappedUnits(rows []ProviderRow) []string {
	seen := make(map[string]struct{})
	var units []string
	for _, r := range rows {
		if r.Record.UnidadeID != 0 || r.RawUnit == "" {
			continue
		}
		if _, ok := notAvailable[utils.NormalizeText(r.RawUnit)]; ok {
			continue
		}
		if _, ok := seen[r.RawUnit]; ok {
			continue
		}
		seen[r.RawUnit] = struct{}{}
		units = append(units, r.RawUnit)
	}
	sort.Strings(units)
	if len(units) > models.MaxUnmappedUnits {
		units = units[:models.MaxUnmappedUnits]
	}
	return units
}

func rowIssues(rows []ProviderRow, failed func(ProviderRow) (string, bool)) []models.RowIssue {
	var issues []models.RowIssue
	for _, r := range rows {
		value, bad := failed(r)
		if !bad {
			continue
		}
		issues = append(issues, models.RowIssue{Linha: r.Line, Nome: r.Record.Nome, Valor: value})
		if len(issues) == models.MaxRowIssues {
			break
		}
	}
	return issues
}

func checkCPFs(report *models.ValidationReport, rows []ProviderRow) {
	total := 0
	for _, r := range rows {
		if utils.ValidateCPF(r.Record.CPF) {
			continue
		}
		total++
		if len(report.CPFsInvalidos) == models.MaxInvalidCPFs {
			continue
		}
		report.CPFsInvalidos = append(report.CPFsInvalidos, fmt.Sprintf("Linha %d", r.Line))
		report.CPFsInvalidosDetalhe = append(report.CPFsInvalidosDetalhe, models.RowIssue{
			Linha: r.Line,
			Nome:  r.Record.Nome,
			Valor: fmt.Sprintf("%s -> %s", strings.TrimSpace(r.RawCPF), r.Record.CPF),
		})
	}
	if total == 0 {
		return
	}

	line := "CPFs inválidos detectados: " + strings.Join(report.CPFsInvalidos, ", ")
	if total > len(report.CPFsInvalidos) {
		line += "..."
	}
	report.Problemas = append(report.Problemas, line)
}
