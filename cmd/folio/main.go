// Command folio is a personal research library: it ingests PDFs, embeds
// their text into a local vector store and answers questions with citations.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// configDirEnv overrides the config directory.
const configDirEnv = "FOLIO_CONFIG_DIR"

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir, err := configDir()
	if err != nil {
		logger.Error("locating config directory: %v", err)
		return err
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		logger.Error("loading config: %v", err)
		return err
	}

	cli.SetVersion(version)
	cli.SetSettingsService(services.NewSettingsService(store, dir))
	cli.SetMetadataLoader(file.SidecarSuffix, file.LoadMetadata)
	cli.SetEmbeddingValidator(validateEmbedding)
	cli.SetRuntimeFactory(newRuntime)

	return cli.Execute(ctx)
}

// configDir returns FOLIO_CONFIG_DIR, or ~/.folio.
func configDir() (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return filepath.Abs(dir)
	}
	return file.DefaultDir()
}

func validateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := ai.CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}
