package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentReads bounds parallel file reads during ingest.
const maxConcurrentReads = 8

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest markdown source documents",
	Long: `Parse markdown files into content units, embed them and group
near-duplicates across every ingested source. Glossary terms found in the
text are extracted and grouped the same way.

Re-ingesting a file replaces the items it produced before.

With --watch, docmerge keeps running and re-ingests a file whenever it
changes. Removing a file removes its items.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestRemoveCmd = &cobra.Command{
	Use:   "remove [file...]",
	Short: "Remove every item ingested from the given sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestRemove,
}

func init() {
	ingestCmd.Flags().BoolP("watch", "w", false, "Re-ingest files when they change")
	ingestCmd.AddCommand(ingestRemoveCmd)
	rootCmd.AddCommand(ingestCmd)
}

// sourceFile is a source document read from disk.
type sourceFile struct {
	id   string
	text string
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	ctx := cmd.Context()
	files, err := readSources(ctx, args)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ingestFile(cmd, f); err != nil {
			return err
		}
	}

	if !watch {
		return nil
	}
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.id
	}
	cmd.Println("Watching for changes (Ctrl+C to stop)...")
	return watchSources(ctx, cmd, ids)
}

func runIngestRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	for _, arg := range args {
		id := sourceID(arg)
		n, err := ingestService.RemoveSource(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", id, err)
		}
		cmd.Printf("Removed %s: %d items\n", id, n)
	}
	return nil
}

// readSources reads every file concurrently, keeping argument order.
func readSources(ctx context.Context, paths []string) ([]sourceFile, error) {
	files := make([]sourceFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", p, err)
			}
			files[i] = sourceFile{id: sourceID(p), text: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func ingestFile(cmd *cobra.Command, f sourceFile) error {
	res, err := ingestService.IngestSource(cmd.Context(), f.id, f.text)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", f.id, err)
	}
	cmd.Printf("Ingested %s: %d sections, %d terms\n", res.SourceID, res.Sections, res.Terms)
	return nil
}

// sourceID derives a stable source id from a file path.
func sourceID(path string) string {
	return filepath.Clean(path)
}
