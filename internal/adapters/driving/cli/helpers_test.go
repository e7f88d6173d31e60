package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/markdown"
	"github.com/custodia-labs/docmerge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/services"
)

// setupTestServices wires in-memory services and returns a cleanup func.
func setupTestServices() func() {
	session := services.NewSession(memory.NewVectorIndex(), memory.NewDestinationStore())
	md := markdown.NewParser()
	embedder := local.NewEmbeddingService(local.Config{})
	review := services.NewReviewService(session, embedder)

	SetServices(Services{
		Ingest:   services.NewIngestService(session, md, embedder, domain.DefaultAppSettings().Grouping),
		Review:   review,
		Assembly: services.NewAssemblyService(session, md, review),
		Settings: services.NewSettingsService(memory.NewConfigStore(), nil),
		Session:  session,
	})

	prevBootstrap := bootstrap
	bootstrap = nil
	return func() {
		SetServices(Services{})
		bootstrap = prevBootstrap
		bootstrapErr = nil
	}
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeSource writes a markdown file into a temp dir and returns its path.
func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const cachingDoc = "# Caching\n\n" +
	"A cache stores frequently used data in fast memory so later reads avoid the slow backing store.\n\n" +
	"- **TTL**: Time to live for a cached entry\n"

const cachingCopy = "# Caching\n\n" +
	"A cache stores frequently used data in fast memory so later reads avoid the slow backing store.\n\n" +
	"Deployment happens every Tuesday after the release review.\n"

// resetFlags restores every flag to its default so executions don't leak
// flag values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
