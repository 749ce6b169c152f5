// Package commands implements the echo agent command line interface
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/echo-agent/pkg/api/v1/client"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagTimeout       = "timeout"
)

// environment variable names
const (
	envServerAddress = "ECHO_AGENT_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client unless one was injected
func initClient(cmd *cobra.Command) error {
	if apiClient != nil {
		return nil
	}
	timeout, err := cmd.Flags().GetDuration(flagTimeout)
	if err != nil {
		return err
	}

	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress
	opts.Timeout = timeout

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	// PersistentPreRunE handles the env var override
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the echo agent (env: "+envServerAddress+")")
	RootCmd.PersistentFlags().Duration(flagTimeout, client.DefaultTimeout, "API request timeout")

	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetAgentCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "echo-agent",
	Short: "Echo agent CLI - A command line interface for the echo agent API",
	Long: `echo-agent is a command line tool for submitting text jobs to an echo agent,
following their payment status and inspecting the agent.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > Env Var > Default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// printJSON pretty prints v to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return err
}
