package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/mapping"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/observability"
	"github.com/prefeitura-sp/app-sicap/internal/spreadsheet"
	"github.com/prefeitura-sp/app-sicap/internal/utils"
	"go.uber.org/zap"
)

// monthPattern finds the month tag in names such as "Folha PSM (out.25).xlsx".
var monthPattern = regexp.MustCompile(`\(([A-Za-z]{3})[\.)]`)

const maxStackBytes = 800

// Request is one spreadsheet submission.
type Request struct {
	FilePath           string
	SourceName         string
	Username           string
	Password           string
	Month              string
	Year               string
	AccountingPeriodID string
	// PeriodFromMapping looks the accounting period up by month in the
	// mapping table when AccountingPeriodID is empty.
	PeriodFromMapping bool
}

// Prepared is a batch that went through the validation gate.
type Prepared struct {
	Payload   *models.Payload
	Report    *models.ValidationReport
	Rows      []ProviderRow
	Month     string
	FirstUnit string
	Started   time.Time
}

// Pipeline turns a payroll spreadsheet into a SICAP submission. It holds no
// state between runs.
type Pipeline struct {
	cfg    *config.Config
	client Submitter
	logger *logging.SafeLogger
}

// NewPipeline creates a pipeline submitting through client.
func NewPipeline(cfg *config.Config, client Submitter, logger *logging.SafeLogger) *Pipeline {
	return &Pipeline{cfg: cfg, client: client, logger: logger}
}

// Process runs the whole pipeline and always returns a result.
func (p *Pipeline) Process(ctx context.Context, req Request) (result *models.Result) {
	start := time.Now()
	ctx, span, end := utils.TraceOperation(ctx, "pipeline.process", map[string]interface{}{
		"pipeline.source": p.sourceName(req),
	})
	defer end()

	defer func() {
		if result == nil {
			result = models.Failure(models.KindInternal, "Erro interno: pipeline sem resultado", nil)
		}
		outcome := result.Kind.String()
		observability.PipelineRuns.WithLabelValues(outcome).Inc()
		observability.PipelineDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		utils.AddSpanAttribute(span, "pipeline.outcome", outcome)
	}()
	defer p.recoverPanic(&result)

	prepared, failure := p.Prepare(ctx, req)
	if failure != nil {
		return failure
	}
	prepared.Started = start
	return p.Submit(ctx, req, prepared)
}

// Prepare loads the mapping table, reads the workbook, builds the payload and
// runs the validation gate. The returned Prepared is non-nil whenever rows were
// built, including when the gate rejects the batch.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (prepared *Prepared, failure *models.Result) {
	defer p.recoverPanic(&failure)

	started := time.Now()
	timer := observability.NewStageTimer("prepare", p.logger)
	defer timer.End()
	source := p.sourceName(req)
	p.logger.Info("processing spreadsheet",
		zap.String("arquivo", source),
		zap.String("mes", req.Month),
		zap.String("ano", req.Year))

	table, failure := p.loadMapping(ctx, timer)
	if failure != nil {
		return nil, failure
	}

	month := detectMonth(req.Month, source)
	if month != "" {
		p.logger.Info("reference month", zap.String("mes", month))
	}

	periodID, failure := p.accountingPeriod(req, table, month)
	if failure != nil {
		timer.Mark("period", "error")
		return nil, failure
	}
	timer.Mark("period", "success")

	_, readSpan := utils.TraceSpreadsheetRead(ctx, source)
	wb, err := spreadsheet.Open(req.FilePath)
	readSpan.End()
	if err != nil {
		timer.Mark("spreadsheet", "error")
		p.logger.Warn("failed to read workbook", zap.String("arquivo", source), zap.Error(err))
		return nil, models.Failure(models.KindMalformed,
			fmt.Sprintf("Erro ao ler abas da planilha (%s, %s). Verifique o formato.", spreadsheet.CompanySheet, spreadsheet.ProvidersSheet),
			map[string]interface{}{"erro_tecnico": err.Error()})
	}
	timer.Mark("spreadsheet", "success")

	company, err := BuildCompany(wb.Company)
	if err != nil {
		timer.Mark("company", "error")
		return nil, models.Failure(models.KindMalformed,
			"Erro ao ler dados da aba Empresa (600). Verifique colunas e valores.",
			map[string]interface{}{"erro": err.Error()})
	}
	if !utils.ValidateCNPJ(company.CnpjEmpresa) {
		p.logger.Warn("company CNPJ failed check digit validation", zap.String("cnpj", company.CnpjEmpresa))
	}
	company.ID = p.cfg.CompanyID
	company.ParceriaID = p.cfg.PartnershipID
	company.PrestacaoContaID = periodID
	timer.Mark("company", "success")

	columns := spreadsheet.ResolveColumns(wb.Providers.Headers, spreadsheet.ProviderFields)
	rows, err := BuildProviders(wb.Providers, columns, table)
	if err != nil {
		timer.Mark("providers", "error")
		return nil, models.Failure(models.KindMalformed,
			"Erro ao ler dados da aba Prestadores (610). Verifique os valores.",
			map[string]interface{}{"erro": err.Error()})
	}
	if len(rows) == 0 {
		timer.Mark("providers", "error")
		return nil, models.Failure(models.KindMalformed,
			"A aba Prestadores (610) não possui linhas de dados.", nil)
	}
	timer.Mark("providers", "success")

	payload := &models.Payload{
		Company:       company,
		Prestadores:   Providers(rows),
		SourceArquivo: source,
	}
	payload.Sanitize()

	prepared = &Prepared{
		Payload:   payload,
		Rows:      rows,
		Month:     month,
		FirstUnit: rows[0].RawUnit,
		Started:   started,
	}

	_, gateSpan := utils.TraceValidation(ctx, len(rows))
	prepared.Report = RunValidationGate(columns, rows)
	gateSpan.End()

	if prepared.Report.HasErrors() {
		timer.Mark("validation", "rejected")
		p.logger.Warn("validation gate rejected batch",
			zap.String("arquivo", source),
			zap.Int("linhas", len(rows)),
			zap.Int("colunas_faltantes", len(prepared.Report.ColunasFaltantes)),
			zap.Int("unidades_sem_mapa", len(prepared.Report.UnidadesSemMapa)),
			zap.Int("cargos_sem_mapa", len(prepared.Report.CargosSemMapa)),
			zap.Int("linhas_servico_sem_mapa", len(prepared.Report.LinhasServicoSemMapa)),
			zap.Int("cpfs_invalidos", len(prepared.Report.CPFsInvalidos)))
		for _, r := range rows {
			if !utils.ValidateCPF(r.Record.CPF) {
				p.logger.Debug("invalid CPF", zap.Int("linha", r.Line), zap.String("cpf", observability.MaskCPF(r.Record.CPF)))
			}
		}
		return prepared, models.Failure(models.KindValidation,
			"Erros de validação pré-envio detectados.", prepared.Report.Details())
	}
	timer.Mark("validation", "success")

	p.logger.Info("batch ready for submission",
		zap.String("arquivo", source),
		zap.Int("prestadores", len(rows)),
		zap.String("nota_fiscal", company.NumNotaFiscal),
		zap.Int64("prestacao_conta_id", periodID))
	return prepared, nil
}

// Submit authenticates and posts a prepared batch.
func (p *Pipeline) Submit(ctx context.Context, req Request, prepared *Prepared) (result *models.Result) {
	defer p.recoverPanic(&result)

	payload := prepared.Payload
	timer := observability.NewStageTimer("submit", p.logger)
	defer timer.End()

	started := prepared.Started
	if started.IsZero() {
		started = time.Now()
	}

	p.logger.Info("pipeline state", zap.String("state", "authenticating"))
	token, err := p.client.Login(ctx, req.Username, req.Password)
	if err != nil {
		timer.Mark("authenticating", "error")
		p.logger.Warn("pipeline state", zap.String("state", "failed"), zap.Error(err))
		details := map[string]interface{}{"tempo": elapsed(started)}
		if errors.Is(err, models.ErrTokenMissing) {
			return models.Failure(models.KindAuth, "Token não encontrado na resposta da API", details)
		}
		return models.Failure(models.KindAuth, fmt.Sprintf("Falha na autenticação: %v", err), details)
	}
	timer.Mark("authenticating", "success")

	p.logger.Info("pipeline state", zap.String("state", "submitting"))
	resp, err := p.client.SubmitPayroll(ctx, token, payload)
	if err != nil {
		timer.Mark("submitting", "error")
		p.logger.Warn("pipeline state", zap.String("state", "failed"), zap.Error(err))

		var subErr *models.SubmissionError
		if !errors.As(err, &subErr) {
			return models.Failure(models.KindSubmission, fmt.Sprintf("Erro na conexão com SICAP: %v", err),
				map[string]interface{}{"tempo": elapsed(started)})
		}

		body := decodeBody(subErr.Body)
		details := map[string]interface{}{
			"resposta_api":  body,
			"nota_fiscal":   payload.NumNotaFiscal,
			"status_http":   subErr.StatusCode,
			"classe_status": subErr.StatusClass(),
			"tempo":         elapsed(started),
		}
		if body == nil {
			details["resposta_api"] = ""
		}
		if _, isText := body.(string); !isText && body != nil {
			details["mensagens_api"] = CollectMessages(body)
		}
		return models.Failure(models.KindSubmission,
			fmt.Sprintf("Erro retornado pela API SICAP (Status %d)", subErr.StatusCode), details)
	}
	timer.Mark("submitting", "success")
	observability.ProvidersSubmitted.Add(float64(len(payload.Prestadores)))

	p.logger.Info("pipeline state",
		zap.String("state", "succeeded"),
		zap.String("nota_fiscal", payload.NumNotaFiscal),
		zap.String("nota_fiscal_api", resp.InvoiceNumber()),
		zap.Int("prestadores", len(payload.Prestadores)))
	return models.Success(
		fmt.Sprintf("Folha enviada com sucesso! NF: %s", payload.NumNotaFiscal),
		map[string]interface{}{
			"prestadores_enviados": len(payload.Prestadores),
			"resposta_sucesso":     resp.Decoded(),
			"tempo":                elapsed(started),
		})
}

// elapsed formats the wall-clock time since started, e.g. "1.25s".
func elapsed(started time.Time) string {
	return fmt.Sprintf("%.2fs", time.Since(started).Seconds())
}

func (p *Pipeline) loadMapping(ctx context.Context, timer *observability.StageTimer) (*mapping.Table, *models.Result) {
	path := p.cfg.MappingFile
	_, span := utils.TraceMappingLoad(ctx, path)
	defer span.End()

	table, err := mapping.Load(path)
	if err == nil {
		timer.Mark("mapping", "success")
		return table, nil
	}

	timer.Mark("mapping", "error")
	p.logger.Error("failed to load mapping table", zap.String("path", path), zap.Error(err))
	utils.RecordErrorInSpan(span, err, map[string]interface{}{"mapping.path": path})

	if errors.Is(err, mapping.ErrMappingNotFound) {
		return nil, models.Failure(models.KindConfiguration,
			fmt.Sprintf("Arquivo %s não encontrado no servidor. Contate o suporte.", path),
			map[string]interface{}{"caminho_esperado": path})
	}
	return nil, models.Failure(models.KindConfiguration,
		"Arquivo de mapeamentos inválido.",
		map[string]interface{}{"erro_tecnico": err.Error()})
}

func (p *Pipeline) accountingPeriod(req Request, table *mapping.Table, month string) (int64, *models.Result) {
	id := strings.TrimSpace(req.AccountingPeriodID)
	if id == "" && req.PeriodFromMapping && month != "" {
		if found, ok := table.AccountingPeriod(month); ok {
			p.logger.Info("accounting period resolved from mapping", zap.String("mes", month), zap.String("id", found))
			id = found
		}
	}

	if id == "" {
		p.logger.Warn("accounting period unresolved", zap.String("mes", month), zap.Error(models.ErrPeriodRequired))
		details := map[string]interface{}{"acao": "Informe o ID da competência obtido no portal SICAP."}
		if month != "" {
			details["mes_detectado"] = month
		}
		return 0, models.Failure(models.KindMalformed, "O ID da Prestação de Contas é obrigatório.", details)
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		p.logger.Warn("accounting period rejected", zap.Error(fmt.Errorf("%w: %q", models.ErrPeriodInvalid, id)))
		return 0, models.Failure(models.KindMalformed,
			"O ID da Prestação de Contas deve ser numérico.",
			map[string]interface{}{"valor": id})
	}
	return n, nil
}

func (p *Pipeline) sourceName(req Request) string {
	if req.SourceName != "" {
		return req.SourceName
	}
	return filepath.Base(req.FilePath)
}

// recoverPanic turns a panic into an internal error result. The stack is
// logged, never returned.
func (p *Pipeline) recoverPanic(result **models.Result) {
	r := recover()
	if r == nil {
		return
	}

	stack := debug.Stack()
	if len(stack) > maxStackBytes {
		stack = stack[len(stack)-maxStackBytes:]
	}
	p.logger.Error("unhandled panic in pipeline",
		zap.Any("panic", r),
		zap.ByteString("stack", stack))

	*result = models.Failure(models.KindInternal,
		fmt.Sprintf("Erro interno: %v", r),
		map[string]interface{}{"tipo_erro": fmt.Sprintf("%T", r)})
}

// DetectMonth extracts the lower-case month tag from a file name such as
// "PSM Santana (out.25).xlsx", or "" when there is none.
func DetectMonth(name string) string {
	return detectMonth("", name)
}

// detectMonth prefers the explicit hint and falls back to the "(out.25)" tag
// in the file name.
func detectMonth(hint, name string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return strings.ToLower(hint)
	}
	if m := monthPattern.FindStringSubmatch(name); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}
