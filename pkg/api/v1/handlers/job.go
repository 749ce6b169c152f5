package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/internal/db/models"
	"github.com/celestiaorg/echo-agent/internal/payment"
	"github.com/celestiaorg/echo-agent/internal/services"
)

const directJobMessage = "Job completed without payment verification"

// JobHandler handles HTTP requests for job operations
type JobHandler struct {
	jobService *services.Job
	info       AgentInfo
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(s *services.Job, info AgentInfo) *JobHandler {
	return &JobHandler{
		jobService: s,
		info:       info,
	}
}

// StartJob handles the request to start a paid job
func (h *JobHandler) StartJob(c *fiber.Ctx) error {
	requester, input, err := parseStartJob(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobService.StartPaidJob(c.UserContext(), requester, input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(StartJobResponse{
		Status:                    string(SuccessSlug),
		JobID:                     job.ID,
		PaymentID:                 job.PaymentID,
		BlockchainIdentifier:      job.PaymentID,
		PayByTime:                 job.PayByTime,
		SubmitResultTime:          job.SubmitResultTime,
		UnlockTime:                job.UnlockTime,
		ExternalDisputeUnlockTime: job.ExternalDisputeUnlockTime,
		AgentIdentifier:           h.info.AgentIdentifier,
		SellerVKey:                h.info.SellerVKey,
		IdentifierFromPurchaser:   job.RequesterID,
		Network:                   h.info.Network,
		PaymentType:               payment.PaymentTypeCardano,
		Amounts:                   h.info.Amounts,
		InputHash:                 job.InputHash,
	})
}

// StartJobDirect handles the request to run a job without payment
func (h *JobHandler) StartJobDirect(c *fiber.Ctx) error {
	requester, input, err := parseStartJob(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobService.StartDirectJob(c.UserContext(), requester, input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(StartJobDirectResponse{
		JobID:   job.ID,
		Status:  job.Status.String(),
		Result:  job.Result,
		Message: directJobMessage,
	})
}

// GetStatus handles the request to get a job's status
func (h *JobHandler) GetStatus(c *fiber.Ctx) error {
	jobID := c.Query("job_id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgJobIDRequired))
	}

	job, err := h.jobService.GetStatus(c.UserContext(), jobID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(StatusResponse{
		JobID:         job.ID,
		Status:        job.Status.String(),
		PaymentStatus: string(job.PaymentStatus),
		Result:        job.Result,
		Error:         job.Error,
	})
}

// ListJobs handles the request to list jobs
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	opts, err := listOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	jobs, err := h.jobService.ListJobs(c.UserContext(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(ErrMsgJobListFailed))
	}
	return c.JSON(JobsResponse{Jobs: jobs})
}

// ListPayments handles the request to list the payments of stored jobs
func (h *JobHandler) ListPayments(c *fiber.Ctx) error {
	opts, err := listOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	jobs, err := h.jobService.ListJobs(c.UserContext(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(ErrMsgJobListFailed))
	}

	payments := make([]PaymentInfo, 0, len(jobs))
	for _, job := range jobs {
		if job.PaymentID == "" {
			continue
		}
		payments = append(payments, PaymentInfo{
			JobID:         job.ID,
			PaymentID:     job.PaymentID,
			Status:        job.Status.String(),
			PaymentStatus: string(job.PaymentStatus),
		})
	}
	return c.JSON(PaymentsResponse{Payments: payments})
}

// DeleteJob handles the request to delete a job
func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	jobID := c.Params("job_id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgJobIDRequired))
	}

	if err := h.jobService.DeleteJob(c.UserContext(), jobID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Job " + jobID + " deleted"})
}

func parseStartJob(c *fiber.Ctx) (string, map[string]interface{}, error) {
	var req StartJobRequest
	if err := c.BodyParser(&req); err != nil {
		return "", nil, errInvalidBody
	}
	input, err := req.input()
	if err != nil {
		return "", nil, err
	}
	return req.requester(), input, nil
}

func listOptions(c *fiber.Ctx) (*models.ListOptions, error) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return nil, errNegativePage
	}
	opts := getPaginationOptions(page)

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return nil, errInvalidStatusFilter
		}
		opts.Status = &status
	}
	return opts, nil
}
