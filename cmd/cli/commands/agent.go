package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const flagDetailed = "detailed"

// GetAgentCmd returns the agent command with its subcommands
func GetAgentCmd() *cobra.Command {
	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect the agent",
	}

	agentCmd.AddCommand(&cobra.Command{
		Use:   "availability",
		Short: "Check whether the agent accepts jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := apiClient.Availability(context.Background())
			if err != nil {
				return fmt.Errorf("error checking availability: %w", err)
			}
			return printJSON(cmd, resp)
		},
	})

	agentCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Show the input accepted by the agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := apiClient.InputSchema(context.Background())
			if err != nil {
				return fmt.Errorf("error getting input schema: %w", err)
			}
			return printJSON(cmd, resp)
		},
	})

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health of the agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			detailed, _ := cmd.Flags().GetBool(flagDetailed)
			if detailed {
				resp, err := apiClient.HealthDetailed(context.Background())
				if err != nil {
					return fmt.Errorf("error checking health: %w", err)
				}
				return printJSON(cmd, resp)
			}

			resp, err := apiClient.HealthCheck(context.Background())
			if err != nil {
				return fmt.Errorf("error checking health: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	healthCmd.Flags().BoolP(flagDetailed, "d", false, "Include runtime information")
	agentCmd.AddCommand(healthCmd)

	return agentCmd
}
