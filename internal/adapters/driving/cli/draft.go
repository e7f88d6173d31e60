package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

var draftCmd = &cobra.Command{
	Use:   "draft [group-id]",
	Short: "Draft a merged version of a group with a language model",
	Long: `Ask the configured language model to merge the members of a group.

The draft is printed by default. With --into, a section draft is inserted
into a destination document at --at and the group is resolved. With
--apply, a term draft replaces the first term of the group and the other
terms are rejected.

Drafting needs an llm provider:

  docmerge settings set llm.provider ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().String("into", "", "Destination document to insert a section draft into")
	draftCmd.Flags().String("at", "0", "Path to insert the draft at")
	draftCmd.Flags().Bool("apply", false, "Replace the group's terms with a term draft")
	draftCmd.Flags().Bool("json", false, "Print JSON")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return notConfigured("draft")
	}
	into, _ := cmd.Flags().GetString("into")
	atFlag, _ := cmd.Flags().GetString("at")
	apply, _ := cmd.Flags().GetBool("apply")
	asJSON, _ := cmd.Flags().GetBool("json")
	if into != "" && apply {
		return fmt.Errorf("%w: use either --into or --apply", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	draft, err := draftService.DraftMerge(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to draft: %w", err)
	}

	switch {
	case into != "":
		if draft.ContentType != domain.ContentTypeSection {
			return fmt.Errorf("%w: --into takes section groups, use --apply for terms", domain.ErrInvalidInput)
		}
		return insertDraft(cmd, draft, into, atFlag)
	case apply:
		if draft.ContentType != domain.ContentTypeTerm {
			return fmt.Errorf("%w: --apply takes term groups, use --into for sections", domain.ErrInvalidInput)
		}
		return applyTermDraft(cmd, draft)
	case asJSON:
		return printJSON(cmd, draft)
	default:
		cmd.Println(draft.Markdown)
		return nil
	}
}

func insertDraft(cmd *cobra.Command, draft *domain.Draft, uri, atFlag string) error {
	if assemblyService == nil {
		return notConfigured("assembly")
	}
	if reviewService == nil {
		return notConfigured("review")
	}
	at, err := domain.ParsePath(atFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	doc, err := assemblyService.InsertBlock(ctx, uri, at, draft.Markdown)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}
	if err := reviewService.MarkManyResolved(ctx, draft.MemberIDs); err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", draft.GroupID, err)
	}
	cmd.Printf("Merged draft of group %s into %s (%d blocks)\n", draft.GroupID, doc.URI, len(doc.Tree.Children))
	return nil
}

// termLine matches "- **Term**: definition" or "Term: definition".
var termLine = regexp.MustCompile(`^(?:[-*]\s+)?(?:\*\*(.+?)\*\*|([^:*]+)):\s*(.+)$`)

func parseTermDraft(text string) (term, definition string, ok bool) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	m := termLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	term = m[1]
	if term == "" {
		term = m[2]
	}
	return strings.TrimSpace(term), strings.TrimSpace(m[3]), true
}

func applyTermDraft(cmd *cobra.Command, draft *domain.Draft) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	term, definition, ok := parseTermDraft(draft.Markdown)
	if !ok {
		return fmt.Errorf("%w: cannot read a term from draft %q", domain.ErrInvalidInput, draft.Markdown)
	}

	ctx := cmd.Context()
	keep := draft.MemberIDs[0]
	if err := reviewService.UpdateTerm(ctx, keep, term, definition); err != nil {
		return fmt.Errorf("failed to update term %s: %w", keep, err)
	}
	if err := reviewService.MarkResolved(ctx, keep); err != nil {
		return fmt.Errorf("failed to resolve term %s: %w", keep, err)
	}
	for _, id := range draft.MemberIDs[1:] {
		if err := reviewService.RejectTerm(ctx, id); err != nil {
			return fmt.Errorf("failed to reject term %s: %w", id, err)
		}
	}
	cmd.Printf("Applied %s: %s\n", term, definition)
	return nil
}
