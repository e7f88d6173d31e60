package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

var destCmd = &cobra.Command{
	Use:   "dest",
	Short: "Assemble destination documents",
	Long: `Create destination documents and fill them with reviewed content.

Blocks are addressed by dotted paths of child indices from the document
root, e.g. "0" is the first block and "2.1" is the second child of the
third block. Use 'docmerge dest show' to see the paths.`,
}

var destCreateCmd = &cobra.Command{
	Use:   "create [uri]",
	Short: "Create an empty destination document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestCreate,
}

var destListCmd = &cobra.Command{
	Use:   "list",
	Short: "List destination documents",
	Args:  cobra.NoArgs,
	RunE:  runDestList,
}

var destShowCmd = &cobra.Command{
	Use:   "show [uri]",
	Short: "Show the blocks of a destination document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestShow,
}

var destInsertCmd = &cobra.Command{
	Use:   "insert [uri] [path]",
	Short: "Insert markdown or an indexed section at a path",
	Long: `Insert content before the block at path. Use --section to insert an
indexed section (which marks it resolved), --markdown for literal text,
or --file to insert the contents of a markdown file.`,
	Args: cobra.ExactArgs(2),
	RunE: runDestInsert,
}

var destMergeCmd = &cobra.Command{
	Use:   "merge [uri] [path] [group-id] [keep-id]",
	Short: "Insert the kept member of a group and resolve the whole group",
	Long: `Insert one member of a similarity group at path and mark every member
resolved.

keep-id names the member to insert. Without it the first member that
"docmerge groups" lists for the group is kept.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runDestMerge,
}

var destMoveCmd = &cobra.Command{
	Use:   "move [uri] [from] [to]",
	Short: "Move a block to another path",
	Args:  cobra.ExactArgs(3),
	RunE:  runDestMove,
}

var destDeleteCmd = &cobra.Command{
	Use:   "delete [uri] [path]",
	Short: "Delete the block at a path",
	Args:  cobra.ExactArgs(2),
	RunE:  runDestDelete,
}

var destRemoveCmd = &cobra.Command{
	Use:   "remove [uri]",
	Short: "Discard a destination document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestRemove,
}

var publishCmd = &cobra.Command{
	Use:   "publish [uri]",
	Short: "Write a destination document with its glossary",
	Long: `Serialise a destination document as markdown, append a glossary of
the resolved terms that occur in it, and write it to the destination's
uri (or --output). Use --stdout to print instead of writing.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	destCreateCmd.Flags().String("title", "", "Title heading for the new document")
	destShowCmd.Flags().Bool("outline", false, "Show the outline of content units")
	destShowCmd.Flags().Bool("json", false, "Print JSON")
	destInsertCmd.Flags().String("section", "", "Indexed section id to insert")
	destInsertCmd.Flags().String("markdown", "", "Markdown text to insert")
	destInsertCmd.Flags().String("file", "", "Markdown file to insert")
	destInsertCmd.MarkFlagsMutuallyExclusive("section", "markdown", "file")
	destInsertCmd.MarkFlagsOneRequired("section", "markdown", "file")
	publishCmd.Flags().StringP("output", "o", "", "Write to this file instead of the uri")
	publishCmd.Flags().Bool("stdout", false, "Print the document instead of writing it")

	destCmd.AddCommand(destCreateCmd)
	destCmd.AddCommand(destListCmd)
	destCmd.AddCommand(destShowCmd)
	destCmd.AddCommand(destInsertCmd)
	destCmd.AddCommand(destMergeCmd)
	destCmd.AddCommand(destMoveCmd)
	destCmd.AddCommand(destDeleteCmd)
	destCmd.AddCommand(destRemoveCmd)
	rootCmd.AddCommand(destCmd)
	rootCmd.AddCommand(publishCmd)
}

func runDestCreate(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return fmt.Errorf("getting title flag: %w", err)
	}
	doc, err := assemblyService.CreateDestination(cmd.Context(), args[0], title)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	cmd.Printf("Created %s\n", doc.URI)
	return nil
}

func runDestList(cmd *cobra.Command, _ []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	docs, err := assemblyService.ListDestinations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list destinations: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No destination documents.")
		return nil
	}
	for _, d := range docs {
		state := "saved"
		if d.Unsaved {
			state = "unsaved"
		}
		blocks := 0
		if d.Tree != nil {
			blocks = len(d.Tree.Children)
		}
		cmd.Printf("%s (%s, %d blocks)\n", d.URI, state, blocks)
	}
	return nil
}

func runDestShow(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	outline, err := cmd.Flags().GetBool("outline")
	if err != nil {
		return fmt.Errorf("getting outline flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}
	ctx := cmd.Context()

	if outline {
		entries, err := assemblyService.Outline(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get outline: %w", err)
		}
		if asJSON {
			return printJSON(cmd, entries)
		}
		printOutline(cmd, entries, "")
		return nil
	}

	doc, err := assemblyService.GetDestination(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get destination: %w", err)
	}
	if asJSON {
		return printJSON(cmd, doc)
	}
	if doc.Tree == nil || len(doc.Tree.Children) == 0 {
		cmd.Println("(empty)")
		return nil
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	for i, n := range doc.Tree.Children {
		cmd.Printf("%s %s %s\n", gray(fmt.Sprintf("%3d", i)), n.Type, preview(n.Text()))
	}
	return nil
}

func printOutline(cmd *cobra.Command, entries []domain.OutlineEntry, indent string) {
	for _, e := range entries {
		heading := ""
		if e.ParentHeading != "" {
			heading = fmt.Sprintf(" [%s]", e.ParentHeading)
		}
		cmd.Printf("%s%s %s%s %s\n", indent, e.Path, e.Type, heading, preview(e.Content))
		printOutline(cmd, e.Children, indent+"  ")
	}
}

func runDestInsert(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	at, err := domain.ParsePath(args[1])
	if err != nil {
		return err
	}
	sectionID, _ := cmd.Flags().GetString("section")
	text, _ := cmd.Flags().GetString("markdown")
	file, _ := cmd.Flags().GetString("file")

	ctx := cmd.Context()
	var doc *domain.DestinationDocument
	switch {
	case sectionID != "":
		doc, err = assemblyService.InsertSection(ctx, args[0], at, sectionID)
	default:
		if file != "" {
			data, readErr := os.ReadFile(file)
			if readErr != nil {
				return fmt.Errorf("failed to read %s: %w", file, readErr)
			}
			text = string(data)
		}
		doc, err = assemblyService.InsertBlock(ctx, args[0], at, text)
	}
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	cmd.Printf("Updated %s (%d blocks)\n", doc.URI, len(doc.Tree.Children))
	return nil
}

func runDestMerge(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	at, err := domain.ParsePath(args[1])
	if err != nil {
		return err
	}
	keepID := ""
	if len(args) == 4 {
		keepID = args[3]
	}
	doc, err := assemblyService.MergeGroup(cmd.Context(), args[0], at, args[2], keepID)
	if err != nil {
		return fmt.Errorf("failed to merge group: %w", err)
	}
	cmd.Printf("Merged group %s into %s\n", args[2], doc.URI)
	return nil
}

func runDestMove(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	from, err := domain.ParsePath(args[1])
	if err != nil {
		return err
	}
	to, err := domain.ParsePath(args[2])
	if err != nil {
		return err
	}
	doc, err := assemblyService.MoveBlock(cmd.Context(), args[0], from, to)
	if err != nil {
		return fmt.Errorf("failed to move block: %w", err)
	}
	cmd.Printf("Updated %s (%d blocks)\n", doc.URI, len(doc.Tree.Children))
	return nil
}

func runDestDelete(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	at, err := domain.ParsePath(args[1])
	if err != nil {
		return err
	}
	doc, err := assemblyService.DeleteBlock(cmd.Context(), args[0], at)
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	cmd.Printf("Updated %s (%d blocks)\n", doc.URI, len(doc.Tree.Children))
	return nil
}

func runDestRemove(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	if err := assemblyService.RemoveDestination(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove destination: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return fmt.Errorf("getting stdout flag: %w", err)
	}
	ctx := cmd.Context()
	uri := args[0]

	text, err := assemblyService.Publish(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	if toStdout {
		cmd.Print(text)
		return nil
	}

	if output == "" {
		output = uri
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil { //nolint:gosec // published documents are meant to be shared
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if err := assemblyService.MarkMaterialized(ctx, uri); err != nil {
		return fmt.Errorf("failed to mark %s saved: %w", uri, err)
	}
	cmd.Printf("Published %s\n", output)
	return nil
}
