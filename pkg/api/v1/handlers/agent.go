package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/internal/agent"
	"github.com/celestiaorg/echo-agent/internal/services"
)

const (
	serviceName        = "Echo Agent"
	serviceDescription = "Masumi agent that reverses or echoes submitted text"
	agentType          = "masumi-agent"
	availabilityMsg    = "Server operational."
)

// inputSchema is the static MIP-003 description of the accepted input
var inputSchema = InputSchemaResponse{
	InputData: []SchemaField{
		{
			ID:   agent.TextField,
			Type: "string",
			Name: "Text to Reverse",
			Data: SchemaFieldData{
				Description: "The text you want the agent to reverse",
				Placeholder: "Enter text here",
			},
		},
	},
}

// AgentHandler serves the static and health endpoints of the agent
type AgentHandler struct {
	jobService *services.Job
	info       AgentInfo
	endpoints  []string
	startedAt  time.Time
	now        func() time.Time
}

// NewAgentHandler creates a new agent handler instance
func NewAgentHandler(s *services.Job, info AgentInfo, endpoints []string) *AgentHandler {
	return &AgentHandler{
		jobService: s,
		info:       info,
		endpoints:  endpoints,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

func (h *AgentHandler) uptime() int64 {
	return int64(h.now().Sub(h.startedAt).Seconds())
}

// Root describes the service
func (h *AgentHandler) Root(c *fiber.Ctx) error {
	return c.JSON(RootResponse{
		Service:     serviceName,
		Version:     h.info.Version,
		Description: serviceDescription,
		Endpoints:   h.endpoints,
	})
}

// Availability reports that the agent accepts jobs
func (h *AgentHandler) Availability(c *fiber.Ctx) error {
	return c.JSON(AvailabilityResponse{
		Status:  "available",
		Type:    agentType,
		Uptime:  h.uptime(),
		Message: availabilityMsg,
	})
}

// InputSchema describes the input accepted by the job endpoints
func (h *AgentHandler) InputSchema(c *fiber.Ctx) error {
	return c.JSON(inputSchema)
}

// Health reports basic liveness
func (h *AgentHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// HealthDetailed reports liveness together with runtime information
func (h *AgentHandler) HealthDetailed(c *fiber.Ctx) error {
	count, err := h.jobService.CountJobs(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(ErrMsgJobCountFailed))
	}

	return c.JSON(DetailedHealthResponse{
		Status:            "healthy",
		Timestamp:         h.now().UTC().Format(time.RFC3339),
		UptimeSeconds:     h.uptime(),
		JobsCount:         count,
		Network:           h.info.Network,
		AgentIdentifier:   h.info.AgentIdentifier,
		Mode:              h.info.Mode,
		PaymentConfigured: h.jobService.PaymentConfigured() == nil,
	})
}
