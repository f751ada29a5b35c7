package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type validarOptions struct {
	excel      string
	periodID   string
	month      string
	reportPath string
}

func newValidarCommand(app *App) *cobra.Command {
	opts := &validarOptions{}
	cmd := &cobra.Command{
		Use:   "validar",
		Short: "Valida a planilha sem enviar nada ao SICAP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			req, err := app.buildRequest(opts.excel, opts.month, opts.periodID)
			if err != nil {
				return err
			}
			prepared, ok := app.prepare(ctx, app.pipeline(), req, opts.excel, opts.reportPath)
			if !ok {
				return ErrReported
			}
			fmt.Fprintf(app.Out, "Planilha válida: %d prestadores, NF %s, Prestação de Contas %d.\n",
				len(prepared.Payload.Prestadores), prepared.Payload.NumNotaFiscal, prepared.Payload.PrestacaoContaID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.excel, "excel", "", "Caminho da planilha Excel (.xlsx)")
	flags.StringVar(&opts.periodID, "id", "", "ID da Prestação de Contas (ignora o mapeamento)")
	flags.StringVar(&opts.month, "mes", "", "Mês de referência (ex: out)")
	flags.StringVar(&opts.reportPath, "relatorio", "", "Exporta os problemas de validação para este CSV")
	_ = cmd.MarkFlagRequired("excel")
	return cmd
}
