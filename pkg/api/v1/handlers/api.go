package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/internal/logger"
	"github.com/celestiaorg/echo-agent/internal/payment"
	"github.com/celestiaorg/echo-agent/internal/services"
)

// AgentInfo is the static description of this agent returned to purchasers
type AgentInfo struct {
	Version         string
	Mode            string
	AgentIdentifier string
	SellerVKey      string
	Network         string
	Amounts         []payment.Amount
}

// writeError maps a service error onto its HTTP status and response body
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	case errors.Is(err, services.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errNotFound(ErrMsgJobNotFound))
	case errors.Is(err, services.ErrNotConfigured):
		logger.Errorf("Paid job rejected: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(ErrMsgNotConfigured + ": " + err.Error()))
	case errors.Is(err, payment.ErrGatewayUnreachable), errors.Is(err, payment.ErrGatewayRejected):
		logger.Errorf("Payment gateway error: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(errGateway(ErrMsgGateway))
	default:
		logger.Errorf("Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(ErrMsgInternal))
	}
}
