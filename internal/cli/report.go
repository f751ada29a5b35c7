package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/prefeitura-sp/app-sicap/internal/models"
)

const maxPrintedRows = 50

// problemLine is one row of the --relatorio CSV.
type problemLine struct {
	Tipo  string `csv:"tipo"`
	Linha int    `csv:"linha"`
	Nome  string `csv:"nome"`
	Valor string `csv:"valor"`
}

type problemGroup struct {
	kind   string
	issues []models.RowIssue
}

func problemGroups(report *models.ValidationReport) []problemGroup {
	var groups []problemGroup
	if len(report.ColunasFaltantes) > 0 {
		g := problemGroup{kind: "Coluna ausente"}
		for _, c := range report.ColunasFaltantes {
			g.issues = append(g.issues, models.RowIssue{Valor: c})
		}
		groups = append(groups, g)
	}
	if len(report.UnidadesSemMapa) > 0 {
		g := problemGroup{kind: "Unidade sem mapeamento"}
		for _, u := range report.UnidadesSemMapa {
			g.issues = append(g.issues, models.RowIssue{Valor: u})
		}
		groups = append(groups, g)
	}
	if len(report.CargosSemMapa) > 0 {
		groups = append(groups, problemGroup{kind: "CargoId ausente", issues: report.CargosSemMapa})
	}
	if len(report.LinhasServicoSemMapa) > 0 {
		groups = append(groups, problemGroup{kind: "LinhaServicoId ausente", issues: report.LinhasServicoSemMapa})
	}
	if len(report.CPFsInvalidosDetalhe) > 0 {
		groups = append(groups, problemGroup{kind: "CPF inválido", issues: report.CPFsInvalidosDetalhe})
	}
	return groups
}

// printValidationReport writes a block the operator can paste to whoever
// fixes the spreadsheet.
func printValidationReport(w io.Writer, file string, report *models.ValidationReport) {
	printHeader(w, fmt.Sprintf("ERROS DE VALIDAÇÃO ANTES DO ENVIO - Arquivo: %s", file))
	for _, g := range problemGroups(report) {
		fmt.Fprintf(w, "\n- %s: %d ocorrência(s)\n", g.kind, len(g.issues))
		for i, issue := range g.issues {
			if i == maxPrintedRows {
				fmt.Fprintf(w, "   ... mais %d\n", len(g.issues)-maxPrintedRows)
				break
			}
			if issue.Linha == 0 {
				fmt.Fprintf(w, "   '%s'\n", issue.Valor)
				continue
			}
			fmt.Fprintf(w, "   linha %d: %s | valor: '%s'\n", issue.Linha, issue.Nome, issue.Valor)
		}
	}
	fmt.Fprintln(w, "\nCopie e cole o bloco acima para o responsável corrigir a planilha.")
}

// writeReportCSV exports every problem, one per line, separated by ';'.
func writeReportCSV(path string, report *models.ValidationReport) error {
	var lines []*problemLine
	for _, g := range problemGroups(report) {
		for _, issue := range g.issues {
			lines = append(lines, &problemLine{Tipo: g.kind, Linha: issue.Linha, Nome: issue.Nome, Valor: issue.Valor})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file(%s): %w", path, err)
	}
	defer f.Close()

	csvWriter := csv.NewWriter(f)
	csvWriter.Comma = ';'
	return gocsv.MarshalCSV(&lines, csvWriter)
}

// printSubmissionFailure reports a failed login or submission.
func printSubmissionFailure(w io.Writer, file string, payload *models.Payload, result *models.Result) {
	printHeader(w, fmt.Sprintf("ERRO NO ENVIO - Arquivo: %s | NumNotaFiscal: %s", file, payload.NumNotaFiscal))
	fmt.Fprintln(w, result.Mensagem)
	if status, ok := result.Detalhes["status_http"]; ok {
		fmt.Fprintf(w, "HTTP status: %v\n", status)
	}
	fmt.Fprintf(w, "Total de prestadores no payload: %d\n", len(payload.Prestadores))

	if messages, ok := result.Detalhes["mensagens_api"].([]string); ok && len(messages) > 0 {
		fmt.Fprintln(w, "\nMensagens de erro retornadas pela API:")
		for _, m := range messages {
			fmt.Fprintf(w, " -  %s\n", m)
		}
	} else if body, ok := result.Detalhes["resposta_api"]; ok {
		if text, isText := body.(string); isText {
			fmt.Fprintln(w, "Resposta da API (texto):")
			fmt.Fprintln(w, text)
		} else {
			fmt.Fprintln(w, "Resposta JSON sem mensagens legíveis; veja a resposta completa abaixo:")
			pretty, _ := json.MarshalIndent(body, "", "  ")
			fmt.Fprintln(w, string(pretty))
		}
	}
	fmt.Fprintln(w, "\nCopie e cole o bloco acima para o responsável corrigir a planilha ou diagnosticar o erro.")
}

// printFailure reports any other pipeline failure with its details.
func printFailure(w io.Writer, result *models.Result) {
	fmt.Fprintf(w, "ERRO: %s\n", result.Mensagem)
	for _, key := range sortedKeys(result.Detalhes) {
		fmt.Fprintf(w, "  %s: %v\n", key, result.Detalhes[key])
	}
}

func printHeader(w io.Writer, header string) {
	rule := strings.Repeat("=", len([]rune(header)))
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, header, rule)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
