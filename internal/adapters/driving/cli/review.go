package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// previewLength caps content shown per item in listings.
const previewLength = 120

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List groups of near-duplicate content",
	Long: `List unresolved groups of similar sections. Each group has at least
two members. Use --terms to list groups of glossary terms instead.`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

var uniqueCmd = &cobra.Command{
	Use:   "unique",
	Short: "List content with no duplicates",
	Long: `List unresolved sections that have no similar partner.
Use --terms to list unique glossary terms instead.`,
	Args: cobra.NoArgs,
	RunE: runUnique,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [id...]",
	Short: "Mark items as resolved",
	Long: `Mark sections or terms as resolved. Resolved items no longer appear
in groups or unique listings. Stops at the first failure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

var popCmd = &cobra.Command{
	Use:   "pop [id]",
	Short: "Remove an item from its group",
	Long: `Remove a false positive from its similarity group without resolving
it. A popped item is never grouped again.`,
	Args: cobra.ExactArgs(1),
	RunE: runPop,
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Edit or reject glossary terms",
}

var termsEditCmd = &cobra.Command{
	Use:   "edit [id] [term] [definition]",
	Short: "Replace a term and its definition",
	Args:  cobra.ExactArgs(3),
	RunE:  runTermsEdit,
}

var termsRejectCmd = &cobra.Command{
	Use:   "reject [id...]",
	Short: "Remove terms from the glossary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTermsReject,
}

var termsCanonicalCmd = &cobra.Command{
	Use:   "canonical",
	Short: "List resolved terms that make up the glossary",
	Args:  cobra.NoArgs,
	RunE:  runTermsCanonical,
}

func init() {
	for _, c := range []*cobra.Command{groupsCmd, uniqueCmd} {
		c.Flags().BoolP("terms", "t", false, "List glossary terms instead of sections")
		c.Flags().Bool("json", false, "Print JSON")
	}
	termsCanonicalCmd.Flags().Bool("json", false, "Print JSON")

	termsCmd.AddCommand(termsEditCmd)
	termsCmd.AddCommand(termsRejectCmd)
	termsCmd.AddCommand(termsCanonicalCmd)

	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(uniqueCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(popCmd)
	rootCmd.AddCommand(termsCmd)
}

// listFlags reads the --terms and --json flags.
func listFlags(cmd *cobra.Command) (terms, asJSON bool, err error) {
	if terms, err = cmd.Flags().GetBool("terms"); err != nil {
		return false, false, fmt.Errorf("getting terms flag: %w", err)
	}
	if asJSON, err = cmd.Flags().GetBool("json"); err != nil {
		return false, false, fmt.Errorf("getting json flag: %w", err)
	}
	return terms, asJSON, nil
}

func runGroups(cmd *cobra.Command, _ []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	terms, asJSON, err := listFlags(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if terms {
		groups, err := reviewService.GetTermGroups(ctx)
		if err != nil {
			return fmt.Errorf("failed to list term groups: %w", err)
		}
		if asJSON {
			return printJSON(cmd, groups)
		}
		if len(groups) == 0 {
			cmd.Println("No term groups.")
			return nil
		}
		for i, g := range groups {
			printGroupHeader(cmd, i+1, g.ID, len(g.Members), "terms")
			for _, m := range g.Members {
				printTerm(cmd, m)
			}
			cmd.Println()
		}
		return nil
	}

	groups, err := reviewService.GetSimilarityGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	if asJSON {
		return printJSON(cmd, groups)
	}
	if len(groups) == 0 {
		cmd.Println("No similarity groups.")
		return nil
	}
	for i, g := range groups {
		printGroupHeader(cmd, i+1, g.ID, len(g.Members), "sections")
		for _, m := range g.Members {
			printSection(cmd, m)
		}
		cmd.Println()
	}
	return nil
}

func runUnique(cmd *cobra.Command, _ []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	terms, asJSON, err := listFlags(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if terms {
		unique, err := reviewService.GetUniqueTerms(ctx)
		if err != nil {
			return fmt.Errorf("failed to list unique terms: %w", err)
		}
		if asJSON {
			return printJSON(cmd, unique)
		}
		if len(unique) == 0 {
			cmd.Println("No unique terms.")
			return nil
		}
		for _, t := range unique {
			printTerm(cmd, t)
		}
		return nil
	}

	unique, err := reviewService.GetUniqueSections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unique sections: %w", err)
	}
	if asJSON {
		return printJSON(cmd, unique)
	}
	if len(unique) == 0 {
		cmd.Println("No unique sections.")
		return nil
	}
	for _, s := range unique {
		printSection(cmd, s)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	if err := reviewService.MarkManyResolved(cmd.Context(), args); err != nil {
		return fmt.Errorf("failed to resolve: %w", err)
	}
	cmd.Printf("Resolved %d item(s)\n", len(args))
	return nil
}

func runPop(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	if err := reviewService.PopFromGroup(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to pop: %w", err)
	}
	cmd.Printf("Popped %s\n", args[0])
	return nil
}

func runTermsEdit(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	if err := reviewService.UpdateTerm(cmd.Context(), args[0], args[1], args[2]); err != nil {
		return fmt.Errorf("failed to edit term: %w", err)
	}
	cmd.Printf("Updated term %s\n", args[0])
	return nil
}

func runTermsReject(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	for _, id := range args {
		if err := reviewService.RejectTerm(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to reject %s: %w", id, err)
		}
	}
	cmd.Printf("Rejected %d term(s)\n", len(args))
	return nil
}

func runTermsCanonical(cmd *cobra.Command, _ []string) error {
	if reviewService == nil {
		return notConfigured("review")
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}
	terms, err := reviewService.CanonicalTerms(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list terms: %w", err)
	}
	if asJSON {
		return printJSON(cmd, terms)
	}
	if len(terms) == 0 {
		cmd.Println("No resolved terms.")
		return nil
	}
	for _, t := range terms {
		cmd.Printf("%s: %s\n", t.Term, t.Definition)
	}
	return nil
}

func printGroupHeader(cmd *cobra.Command, n int, id string, size int, noun string) {
	bold := color.New(color.FgCyan, color.Bold).SprintFunc()
	cmd.Printf("%s %s\n", bold(fmt.Sprintf("Group %d", n)), fmt.Sprintf("(%s, %d %s)", id, size, noun))
}

func printSection(cmd *cobra.Command, s domain.SourceSection) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	location := fmt.Sprintf("%s:%d-%d", s.SourceID, s.StartLine, s.EndLine)
	heading := ""
	if s.ParentHeading != "" {
		heading = fmt.Sprintf(" under %q", s.ParentHeading)
	}
	cmd.Printf("  %s %s %s%s\n", s.ID, gray(location), s.BlockType, heading)
	cmd.Printf("    %s\n", preview(s.Content))
}

func printTerm(cmd *cobra.Command, t domain.GlossaryTerm) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	cmd.Printf("  %s %s %s\n", t.ID, gray(t.SourceID), gray(fmt.Sprintf("%s %.2f", t.Pattern, t.Confidence)))
	cmd.Printf("    %s: %s\n", t.Term, preview(t.Definition))
}

// preview flattens content to one line and truncates it.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= previewLength {
		return s
	}
	return s[:previewLength-3] + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
