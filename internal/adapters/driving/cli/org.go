package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage the active organization",
}

var orgSwitchCmd = &cobra.Command{
	Use:   "switch [organization-id]",
	Short: "Switch the active organization",
	Long:  `Stores the organization and reloads the document list for it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOrgSwitch,
}

func init() {
	orgCmd.AddCommand(orgSwitchCmd)
	rootCmd.AddCommand(orgCmd)
}

func runOrgSwitch(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.SwitchOrganization(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to switch organization: %w", explain(err))
	}

	cmd.Printf("Active organization: %s\n", args[0])
	return nil
}
