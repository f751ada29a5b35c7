package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/models"
	"github.com/prefeitura-sp/app-sicap/internal/observability"
	"github.com/prefeitura-sp/app-sicap/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type enviarOptions struct {
	excel         string
	periodID      string
	month         string
	dryRun        bool
	saveOnSuccess bool
	reportPath    string
	outputDir     string
	sentDir       string
}

func newEnviarCommand(app *App) *cobra.Command {
	opts := &enviarOptions{}
	cmd := &cobra.Command{
		Use:   "enviar",
		Short: "Valida a planilha e envia a folha ao SICAP",
		Long: `Valida a planilha e envia a folha ao SICAP.

O mês é detectado pelo nome do arquivo, no padrão "(out.25)". Sem --id, o ID
da Prestação de Contas é buscado em PrestacaoContaId no arquivo de
mapeamentos. Após um envio bem-sucedido a planilha é movida para Enviados/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runEnviar(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.excel, "excel", "", "Caminho da planilha Excel (.xlsx)")
	flags.StringVar(&opts.periodID, "id", "", "ID da Prestação de Contas (ignora o mapeamento)")
	flags.StringVar(&opts.month, "mes", "", "Mês de referência (ex: out); padrão: detectado no nome do arquivo")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Gera o JSON sem enviar")
	flags.BoolVar(&opts.saveOnSuccess, "save-on-success", false, "Salva o JSON em Enviados/ após envio bem-sucedido")
	flags.StringVar(&opts.reportPath, "relatorio", "", "Exporta os problemas de validação para este CSV")
	flags.StringVar(&opts.outputDir, "saida", ".", "Diretório do JSON gerado com --dry-run")
	flags.StringVar(&opts.sentDir, "enviados", services.SentDir, "Diretório das planilhas enviadas")
	_ = cmd.MarkFlagRequired("excel")
	return cmd
}

func (a *App) runEnviar(ctx context.Context, opts *enviarOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := observability.Logger()

	req, err := a.buildRequest(opts.excel, opts.month, opts.periodID)
	if err != nil {
		return err
	}
	if !opts.dryRun {
		if a.cfg.SICAPUsername == "" || a.cfg.SICAPPassword == "" {
			return fmt.Errorf("credenciais ausentes: defina SICAP_USUARIO e SICAP_SENHA")
		}
		req.Username = a.cfg.SICAPUsername
		req.Password = a.cfg.SICAPPassword
		logger.Info("using SICAP credentials", zap.Any("credentials", observability.MaskCredentials(map[string]string{
			"usuario": req.Username,
			"senha":   req.Password,
		})))
	}

	pipeline := a.pipeline()
	prepared, ok := a.prepare(ctx, pipeline, req, opts.excel, opts.reportPath)
	if !ok {
		return ErrReported
	}
	fmt.Fprintf(a.Out, "Total de prestadores: %d\n", len(prepared.Payload.Prestadores))

	name := services.PayloadFileName(prepared.FirstUnit, prepared.Month)
	if opts.dryRun {
		out := filepath.Join(opts.outputDir, name)
		if err := services.WritePayloadFile(out, prepared.Payload); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "--dry-run ativo: JSON gerado em %s, sem envio.\n", out)
		return nil
	}

	result := pipeline.Submit(ctx, req, prepared)
	if !result.OK() {
		printSubmissionFailure(a.Out, opts.excel, prepared.Payload, result)
		return ErrReported
	}
	fmt.Fprintln(a.Out, result.Mensagem)

	now := a.Now()
	moved, err := services.ArchiveFile(opts.excel, opts.sentDir, now)
	if err != nil {
		logging.Logger.Error("failed to archive spreadsheet", zap.String("arquivo", opts.excel), zap.Error(err))
		fmt.Fprintf(a.Out, "Planilha não pôde ser movida para %s: %v\n", opts.sentDir, err)
	} else {
		fmt.Fprintf(a.Out, "Planilha movida para: %s\n", moved)
	}

	if opts.saveOnSuccess {
		target := services.UniqueTarget(filepath.Join(opts.sentDir, name), now)
		if err := services.WritePayloadFile(target, prepared.Payload); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Arquivo JSON salvo em: %s\n", target)
	}
	return nil
}

// buildRequest checks the spreadsheet path and works out the month.
func (a *App) buildRequest(excel, month, periodID string) (services.Request, error) {
	if _, err := os.Stat(excel); err != nil {
		return services.Request{}, fmt.Errorf("arquivo Excel não encontrado: %s", excel)
	}

	if month == "" {
		if month = services.DetectMonth(filepath.Base(excel)); month == "" {
			return services.Request{}, fmt.Errorf("não foi possível detectar o mês no nome do arquivo; use --mes ou o padrão (out.25)")
		}
		fmt.Fprintf(a.Out, "Mês detectado automaticamente a partir do nome do arquivo: '%s'\n", month)
	}
	if periodID != "" {
		fmt.Fprintf(a.Out, "Usando ID de Prestação manual: %s\n", periodID)
	}

	return services.Request{
		FilePath:           excel,
		SourceName:         filepath.Base(excel),
		Month:              month,
		AccountingPeriodID: periodID,
		PeriodFromMapping:  true,
	}, nil
}

// prepare runs the pipeline up to the validation gate and prints whatever
// stops it.
func (a *App) prepare(ctx context.Context, pipeline *services.Pipeline, req services.Request, excel, reportPath string) (*services.Prepared, bool) {
	prepared, failure := pipeline.Prepare(ctx, req)
	if failure == nil {
		return prepared, true
	}

	if failure.Kind == models.KindValidation && prepared != nil {
		printValidationReport(a.Out, excel, prepared.Report)
		if reportPath != "" {
			if err := writeReportCSV(reportPath, prepared.Report); err != nil {
				fmt.Fprintf(a.Out, "Falha ao gravar relatório %s: %v\n", reportPath, err)
			} else {
				fmt.Fprintf(a.Out, "Relatório salvo em: %s\n", reportPath)
			}
		}
		return nil, false
	}

	printFailure(a.Out, failure)
	return nil, false
}
