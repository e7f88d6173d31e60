// Command docmerge finds near-duplicate content across markdown documents
// and assembles merged destination documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docmerge/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/cli"
	"github.com/custodia-labs/docmerge/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetBootstrap(newBootstrap(settings))
	return cli.Execute(ctx)
}
