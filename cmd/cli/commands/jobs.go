package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/echo-agent/pkg/api/v1/client"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
)

// Job flag names
const (
	flagJobID     = "id"
	flagRequester = "requester"
	flagText      = "text"
	flagInput     = "input"
	flagPage      = "page"
	flagStatus    = "status"
	flagInterval  = "interval"
	flagWait      = "wait-timeout"
)

// jobOutput represents the filtered output for a listed job
type jobOutput struct {
	ID        string `json:"job_id"`
	Requester string `json:"requester_id"`
	Status    string `json:"status"`
	Payment   string `json:"payment_status,omitempty"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	Created   string `json:"created_at"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs []jobOutput `json:"jobs"`
}

// GetJobsCmd returns the jobs command with its subcommands
func GetJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage jobs",
	}

	jobsCmd.AddCommand(startJobCmd())
	jobsCmd.AddCommand(startJobDirectCmd())
	jobsCmd.AddCommand(statusCmd())
	jobsCmd.AddCommand(waitCmd())
	jobsCmd.AddCommand(listJobsCmd())
	jobsCmd.AddCommand(listPaymentsCmd())
	jobsCmd.AddCommand(deleteJobCmd())
	return jobsCmd
}

func addStartFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagRequester, "r", "", "Identifier of the purchaser")
	cmd.Flags().StringP(flagText, "t", "", "Text to process")
	cmd.Flags().String(flagInput, "", "Raw input_data as a JSON object (overrides --text)")
	_ = cmd.MarkFlagRequired(flagRequester)
}

// startRequest builds the request body from the start flags
func startRequest(cmd *cobra.Command) (handlers.StartJobRequest, error) {
	requester, err := cmd.Flags().GetString(flagRequester)
	if err != nil {
		return handlers.StartJobRequest{}, fmt.Errorf("error getting requester flag: %w", err)
	}
	text, _ := cmd.Flags().GetString(flagText)
	raw, _ := cmd.Flags().GetString(flagInput)

	req := handlers.StartJobRequest{RequesterID: requester}
	switch {
	case raw != "":
		var input map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return req, fmt.Errorf("invalid --%s value: %w", flagInput, err)
		}
		req.InputData = input
	case text != "":
		req.InputData = map[string]interface{}{"text": text}
	default:
		return req, fmt.Errorf("one of --%s or --%s is required", flagText, flagInput)
	}
	return req, nil
}

func startJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a paid job and print the payment request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := startRequest(cmd)
			if err != nil {
				return err
			}

			resp, err := apiClient.StartJob(context.Background(), req)
			if err != nil {
				return fmt.Errorf("error starting job: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	addStartFlags(cmd)
	return cmd
}

func startJobDirectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-direct",
		Short: "Run a job without payment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := startRequest(cmd)
			if err != nil {
				return err
			}

			resp, err := apiClient.StartJobDirect(context.Background(), req)
			if err != nil {
				return fmt.Errorf("error starting job: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	addStartFlags(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Get the status of a job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobID, _ := cmd.Flags().GetString(flagJobID)

			status, err := apiClient.GetStatus(context.Background(), jobID)
			if err != nil {
				return fmt.Errorf("error getting job status: %w", err)
			}
			return printJSON(cmd, status)
		},
	}
	cmd.Flags().StringP(flagJobID, "i", "", "Job ID")
	_ = cmd.MarkFlagRequired(flagJobID)
	return cmd
}

func waitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Poll a job until it completes or fails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobID, _ := cmd.Flags().GetString(flagJobID)
			interval, err := cmd.Flags().GetDuration(flagInterval)
			if err != nil {
				return fmt.Errorf("error getting interval flag: %w", err)
			}
			timeout, err := cmd.Flags().GetDuration(flagWait)
			if err != nil {
				return fmt.Errorf("error getting wait timeout flag: %w", err)
			}

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			status, err := apiClient.WaitForJob(ctx, jobID, interval)
			if err != nil {
				return fmt.Errorf("error waiting for job: %w", err)
			}
			return printJSON(cmd, status)
		},
	}
	cmd.Flags().StringP(flagJobID, "i", "", "Job ID")
	cmd.Flags().Duration(flagInterval, client.DefaultPollInterval, "Delay between status polls")
	cmd.Flags().Duration(flagWait, time.Hour, "Give up after this long (0 waits forever)")
	_ = cmd.MarkFlagRequired(flagJobID)
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(flagPage, "p", 1, "Page number for pagination")
	cmd.Flags().StringP(flagStatus, "S", "", "Filter by job status")
}

func listOptions(cmd *cobra.Command) (client.ListOptions, error) {
	page, err := cmd.Flags().GetInt(flagPage)
	if err != nil {
		return client.ListOptions{}, fmt.Errorf("error getting page flag: %w", err)
	}
	if page < 1 {
		return client.ListOptions{}, fmt.Errorf("page must be a positive number")
	}
	status, _ := cmd.Flags().GetString(flagStatus)
	return client.ListOptions{Page: page, Status: status}, nil
}

func listJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored jobs (debug endpoint)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}

			jobs, err := apiClient.ListJobs(context.Background(), opts)
			if err != nil {
				return fmt.Errorf("error listing jobs: %w", err)
			}

			output := jobListOutput{Jobs: make([]jobOutput, len(jobs))}
			for i, job := range jobs {
				output.Jobs[i] = jobOutput{
					ID:        job.ID,
					Requester: job.RequesterID,
					Status:    job.Status.String(),
					Payment:   string(job.PaymentStatus),
					Result:    job.Result,
					Error:     job.Error,
					Created:   job.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}
			return printJSON(cmd, output)
		},
	}
	addListFlags(cmd)
	return cmd
}

func listPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List the payments of stored jobs (debug endpoint)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}

			payments, err := apiClient.ListPayments(context.Background(), opts)
			if err != nil {
				return fmt.Errorf("error listing payments: %w", err)
			}
			return printJSON(cmd, handlers.PaymentsResponse{Payments: payments})
		},
	}
	addListFlags(cmd)
	return cmd
}

func deleteJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a job (debug endpoint)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobID, _ := cmd.Flags().GetString(flagJobID)

			if err := apiClient.DeleteJob(context.Background(), jobID); err != nil {
				return fmt.Errorf("error deleting job: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Job %s deleted\n", jobID)
			return err
		},
	}
	cmd.Flags().StringP(flagJobID, "i", "", "Job ID")
	_ = cmd.MarkFlagRequired(flagJobID)
	return cmd
}
