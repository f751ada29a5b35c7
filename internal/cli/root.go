// Package cli implements the sicap command line tool, the terminal twin of
// the upload API.
package cli

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/config"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"github.com/prefeitura-sp/app-sicap/internal/services"
	"github.com/spf13/cobra"
)

// ErrReported is returned after a failure report was already printed.
var ErrReported = errors.New("operação não concluída")

// App holds what the commands need from the outside world.
type App struct {
	Out          io.Writer
	LoadConfig   func() (*config.Config, error)
	NewSubmitter func(cfg *config.Config) services.Submitter
	Now          func() time.Time

	cfg          *config.Config
	mappingsPath string
}

// NewApp returns an App wired to the real environment and SICAP API.
func NewApp() *App {
	return &App{
		Out: os.Stdout,
		LoadConfig: func() (*config.Config, error) {
			if err := config.LoadConfig(); err != nil {
				return nil, err
			}
			return config.AppConfig, nil
		},
		NewSubmitter: func(cfg *config.Config) services.Submitter {
			return services.NewSICAPClient(cfg, logging.Logger)
		},
		Now: time.Now,
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "sicap",
		Short: "Envia a folha de pagamento PJ ao SICAP a partir da planilha (abas 600 e 610)",
		Long: `sicap lê a planilha de folha de pagamento, resolve colunas e mapeamentos,
valida CPFs e códigos e envia a folha à API do SICAP.

Exemplos:
  sicap validar --excel "PSM Santana (out.25).xlsx"
  sicap enviar --excel "PSM Santana (out.25).xlsx" --dry-run
  sicap enviar --excel "PSM Santana (out.25).xlsx" --id 9002 --save-on-success`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if app.mappingsPath != "" {
				cfg.MappingFile = app.mappingsPath
			}
			app.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(app.Out)
	root.PersistentFlags().StringVar(&app.mappingsPath, "mapeamentos", "", "Arquivo de mapeamentos (padrão: MAPPING_FILE)")

	root.AddCommand(newEnviarCommand(app), newValidarCommand(app), newVersionCommand(app))
	return root
}

func (a *App) pipeline() *services.Pipeline {
	return services.NewPipeline(a.cfg, a.NewSubmitter(a.cfg), logging.Logger)
}
