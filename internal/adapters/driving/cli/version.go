package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	// Skip service wiring; the version needs no backend.
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("kbsync version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
