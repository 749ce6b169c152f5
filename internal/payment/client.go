package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/celestiaorg/echo-agent/internal/logger"
)

const (
	// DefaultTimeout bounds a single call to the payment service
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of attempts made by CheckStatus
	DefaultRetries = 3
	// DefaultBackoff is the delay before the second status attempt
	DefaultBackoff = 200 * time.Millisecond
	// DefaultMaxBackoff caps the delay between status attempts
	DefaultMaxBackoff = 2 * time.Second
	// DefaultPayByWindow is how long the purchaser has to lock funds
	DefaultPayByWindow = time.Hour
	// DefaultSubmitResultWindow is how long after the pay-by deadline the result may be submitted
	DefaultSubmitResultWindow = 12 * time.Hour
	// DefaultPageSize is the page size used when listing payments
	DefaultPageSize = 100
	// maxPages bounds the scan for a single payment
	maxPages = 5
)

const (
	paymentPath      = "/payment/"
	submitResultPath = "/payment/submit-result"
)

// On-chain states reported by the payment service
const (
	stateFundsLocked         = "FundsLocked"
	stateResultSubmitted     = "ResultSubmitted"
	stateWithdrawn           = "Withdrawn"
	stateRefundWithdrawn     = "RefundWithdrawn"
	stateDisputedWithdrawn   = "DisputedWithdrawn"
	stateFundsOrDatumInvalid = "FundsOrDatumInvalid"
	stateRefundRequested     = "RefundRequested"
)

// Options contains configuration options for the payment client
type Options struct {
	BaseURL         string
	APIKey          string
	AgentIdentifier string
	Network         string

	Timeout    time.Duration
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration

	PayByWindow        time.Duration
	SubmitResultWindow time.Duration
	PageSize           int
}

// Client implements Gateway against the payment service REST API
type Client struct {
	opts Options
	now  func() time.Time
}

var _ Gateway = &Client{}

// NewClient creates a payment client, filling unset options with defaults
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid payment service URL %q", opts.BaseURL)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.PayByWindow <= 0 {
		opts.PayByWindow = DefaultPayByWindow
	}
	if opts.SubmitResultWindow <= 0 {
		opts.SubmitResultWindow = DefaultSubmitResultWindow
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	return &Client{opts: opts, now: time.Now}, nil
}

// CreatePayment opens a payment request for a job
func (c *Client) CreatePayment(ctx context.Context, req CreateRequest) (*Request, error) {
	const op = "create payment"

	inputHash, err := InputHash(req.IdentifierFromPurchaser, req.Input)
	if err != nil {
		return nil, err
	}

	payBy := c.now().Add(c.opts.PayByWindow)
	submitBy := payBy.Add(c.opts.SubmitResultWindow)
	body := map[string]interface{}{
		"agentIdentifier":         c.opts.AgentIdentifier,
		"network":                 c.opts.Network,
		"inputHash":               inputHash,
		"identifierFromPurchaser": req.IdentifierFromPurchaser,
		"paymentType":             PaymentTypeCardano,
		"payByTime":               payBy.UTC().Format(time.RFC3339),
		"submitResultTime":        submitBy.UTC().Format(time.RFC3339),
		"metadata":                "job " + req.JobID,
	}
	if len(req.Amounts) > 0 {
		body["RequestedFunds"] = req.Amounts
	}

	agent, err := c.createAgent(ctx, http.MethodPost, paymentPath, body)
	if err != nil {
		return nil, err
	}
	data, err := c.doRequest(op, agent)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(data, "data")
	id := result.Get("blockchainIdentifier").String()
	if id == "" {
		return nil, rejected(op, http.StatusOK, "response carries no blockchainIdentifier")
	}

	created := &Request{
		BlockchainIdentifier:      id,
		PayByTime:                 result.Get("payByTime").String(),
		SubmitResultTime:          result.Get("submitResultTime").String(),
		UnlockTime:                result.Get("unlockTime").String(),
		ExternalDisputeUnlockTime: result.Get("externalDisputeUnlockTime").String(),
		InputHash:                 result.Get("inputHash").String(),
	}
	if created.InputHash == "" {
		created.InputHash = inputHash
	}
	logger.InfoWithFields("Created payment request", map[string]interface{}{
		"job_id":     req.JobID,
		"payment_id": id,
	})
	return created, nil
}

// CheckStatus reports the payment state, retrying transient failures with a bounded
// exponential backoff before falling back to StatusPending
func (c *Client) CheckStatus(ctx context.Context, paymentID string) Status {
	if paymentID == "" {
		return StatusPending
	}
	delay := c.opts.Backoff
	for attempt := 1; ; attempt++ {
		state, found, err := c.lookup(ctx, paymentID)
		if err == nil {
			if !found {
				logger.Warnf("Payment %s not found on the payment service", paymentID)
				return StatusPending
			}
			return mapState(state)
		}

		logger.Warnf("Status check for payment %s failed (attempt %d/%d): %v", paymentID, attempt, c.opts.Retries, err)
		if attempt >= c.opts.Retries {
			return StatusPending
		}

		select {
		case <-ctx.Done():
			return StatusPending
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.opts.MaxBackoff {
			delay = c.opts.MaxBackoff
		}
	}
}

// MarkComplete submits the result hash for a payment
func (c *Client) MarkComplete(ctx context.Context, paymentID, resultHash string) error {
	const op = "submit result"

	body := map[string]interface{}{
		"network":              c.opts.Network,
		"blockchainIdentifier": paymentID,
		"submitResultHash":     resultHash,
	}
	agent, err := c.createAgent(ctx, http.MethodPost, submitResultPath, body)
	if err != nil {
		return err
	}
	_, submitErr := c.doRequest(op, agent)
	if submitErr == nil {
		logger.Infof("Submitted result for payment %s", paymentID)
		return nil
	}

	// A repeated submission is rejected by the service; treat it as done when the
	// payment already moved past FundsLocked.
	state, found, err := c.lookup(ctx, paymentID)
	if err == nil && found && (state == stateResultSubmitted || state == stateWithdrawn) {
		logger.Infof("Result for payment %s already submitted", paymentID)
		return nil
	}
	return submitErr
}

// lookup scans the payment listing for paymentID and returns its on-chain state
func (c *Client) lookup(ctx context.Context, paymentID string) (string, bool, error) {
	const op = "list payments"
	if paymentID == "" {
		return "", false, nil
	}

	cursor := ""
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("network", c.opts.Network)
		query.Set("limit", strconv.Itoa(c.opts.PageSize))
		if cursor != "" {
			query.Set("cursorId", cursor)
		}

		agent, err := c.createAgent(ctx, http.MethodGet, paymentPath, nil)
		if err != nil {
			return "", false, err
		}
		agent.QueryString(query.Encode())

		data, err := c.doRequest(op, agent)
		if err != nil {
			return "", false, err
		}

		payments := gjson.GetBytes(data, "data.Payments")
		if !payments.Exists() {
			payments = gjson.GetBytes(data, "data.payments")
		}

		var (
			state string
			found bool
			count int
			last  string
		)
		payments.ForEach(func(_, p gjson.Result) bool {
			count++
			last = p.Get("id").String()
			if p.Get("blockchainIdentifier").String() == paymentID {
				state = p.Get("onChainState").String()
				found = true
				return false
			}
			return true
		})
		if found {
			return state, true, nil
		}
		if count < c.opts.PageSize || last == "" {
			return "", false, nil
		}
		cursor = last
	}
	return "", false, nil
}

func mapState(state string) Status {
	switch state {
	case stateFundsLocked, stateResultSubmitted, stateWithdrawn:
		return StatusCompleted
	case stateRefundWithdrawn, stateDisputedWithdrawn, stateFundsOrDatumInvalid, stateRefundRequested:
		return StatusFailed
	default:
		return StatusPending
	}
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *Client) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.opts.BaseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.opts.Timeout)
	}

	agent.Set("token", c.opts.APIKey)
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}
	return agent, nil
}

// doRequest sends the request and returns the body of a 2xx response
func (c *Client) doRequest(op string, agent *fiber.Agent) ([]byte, error) {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, unreachable(op, errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "message").String()
		}
		return nil, rejected(op, statusCode, msg)
	}
	return body, nil
}
