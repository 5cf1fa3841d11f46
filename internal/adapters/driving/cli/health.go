package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the knowledge backend",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthChecker == nil {
		return errors.New("health check not configured")
	}

	status, err := healthChecker.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("backend unhealthy: %w", explain(err))
	}

	cmd.Printf("Status: %s\n", success(status.Status))
	if queryController != nil {
		cmd.Printf("Query transport: %s\n", queryController.TransportName())
	}

	names := make([]string, 0, len(status.Services))
	for name := range status.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := status.Services[name]
		if !status.ServiceEnabled(name) {
			state = warning(state)
		}
		cmd.Printf("  %s %s\n", columnStyle.Render(name), state)
	}
	return nil
}
