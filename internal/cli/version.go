package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/prefeitura-sp/app-sicap/internal/cli.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostra a versão",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(app.Out, "sicap")
			fmt.Fprintf(app.Out, "Version:    %s\n", Version)
			fmt.Fprintf(app.Out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(app.Out, "Go Version: %s\n", runtime.Version())
		},
	}
}
