// Package cli implements the docmerge command line interface using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/core/ports/driving"
	"github.com/custodia-labs/docmerge/internal/logger"
)

// version is set at build time via -ldflags or by SetVersion.
var version = "dev"

var verbose bool

// Services wired by main (or by tests).
var (
	ingestService   driving.IngestService
	reviewService   driving.ReviewService
	assemblyService driving.AssemblyService
	settingsService driving.SettingsService
	sessionService  driving.SessionService
	draftService    driving.DraftService
)

// Services bundles the driving ports used by the commands.
type Services struct {
	Ingest   driving.IngestService
	Review   driving.ReviewService
	Assembly driving.AssemblyService
	Settings driving.SettingsService
	Session  driving.SessionService
	Draft    driving.DraftService
}

// Bootstrap builds the services once flags are parsed. It may return a
// partial set together with an error; commands needing a missing service
// report that error.
type Bootstrap func(ctx context.Context) (Services, error)

var (
	bootstrap    Bootstrap
	bootstrapErr error
	ownsSession  bool
)

var rootCmd = &cobra.Command{
	Use:   "docmerge",
	Short: "Deduplicate markdown sources and assemble merged documents",
	Long: `docmerge finds near-duplicate content across markdown documents.

Ingest source documents, review groups of similar sections and glossary
terms, resolve or pop them, and assemble a destination document from the
content you keep. With a language model configured, draft can propose a
merged version of a group.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		return closeOwnedSession()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// SetServices sets the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	reviewService = s.Review
	assemblyService = s.Assembly
	settingsService = s.Settings
	sessionService = s.Session
	draftService = s.Draft
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := bootstrap(ctx)
	SetServices(s)
	ownsSession = s.Session != nil
	bootstrapErr = err
	if err != nil {
		logger.Debug("bootstrap: %v", err)
	}
	return nil
}

func closeOwnedSession() error {
	if !ownsSession || sessionService == nil {
		return nil
	}
	ownsSession = false
	return sessionService.Close()
}

// notConfigured reports a missing service, including the bootstrap failure
// when there was one.
func notConfigured(name string) error {
	if bootstrapErr != nil {
		return fmt.Errorf("%s service not configured: %w", name, bootstrapErr)
	}
	return errors.New(name + " service not configured")
}
