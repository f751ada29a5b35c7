package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prefeitura-sp/app-sicap/internal/cli"
	"github.com/prefeitura-sp/app-sicap/internal/logging"
)

func main() {
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	if err := cli.NewRootCommand(cli.NewApp()).Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		}
		_ = logging.Logger.Sync()
		os.Exit(1)
	}
}
