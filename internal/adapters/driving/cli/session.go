package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the authoring session",
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear ingested content and destination documents",
	Long: `Clear the vector index and every destination document, starting a
fresh session. Published files on disk are not touched.`,
	Args: cobra.NoArgs,
	RunE: runSessionReset,
}

func init() {
	sessionResetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	sessionCmd.AddCommand(sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionReset(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return notConfigured("session")
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("getting yes flag: %w", err)
	}
	if !yes {
		cmd.Print("Clear all ingested content and destination documents? [y/N]: ")
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if answer != "y" && answer != "Y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}
	if err := sessionService.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	cmd.Println("Session reset.")
	return nil
}
