// Package payment talks to the external payment service that locks, tracks and
// releases the purchaser's funds for a job. The service holds all payment truth;
// this package keeps no state of its own.
package payment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the simplified payment state reported to the job service
type Status string

const (
	// StatusPending means funds are not locked yet, or the state could not be determined
	StatusPending Status = "pending"
	// StatusCompleted means the purchaser's funds are locked for the job
	StatusCompleted Status = "completed"
	// StatusFailed means the payment was refunded, disputed or is invalid
	StatusFailed Status = "failed"
)

// PaymentTypeCardano is the payment type announced to purchasers
const PaymentTypeCardano = "Web3CardanoV1"

// Amount is a quantity of one currency unit
type Amount struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// CreateRequest describes the payment to open for a job
type CreateRequest struct {
	JobID                   string
	IdentifierFromPurchaser string
	Input                   map[string]interface{}
	Amounts                 []Amount
}

// Request is the payment request opened by the payment service
type Request struct {
	BlockchainIdentifier      string
	PayByTime                 string
	SubmitResultTime          string
	UnlockTime                string
	ExternalDisputeUnlockTime string
	InputHash                 string
}

// Gateway is the payment service as seen by the job service
type Gateway interface {
	// CreatePayment opens a payment request. It fails with ErrGatewayUnreachable or ErrGatewayRejected.
	CreatePayment(ctx context.Context, req CreateRequest) (*Request, error)
	// CheckStatus never fails; anything it cannot determine is reported as StatusPending.
	CheckStatus(ctx context.Context, paymentID string) Status
	// MarkComplete submits the result hash. Repeating it for an already completed payment succeeds.
	MarkComplete(ctx context.Context, paymentID, resultHash string) error
}

// InputHash returns the hex sha256 of the purchaser identifier and the canonical JSON of the input
func InputHash(identifierFromPurchaser string, input map[string]interface{}) (string, error) {
	if input == nil {
		input = map[string]interface{}{}
	}
	// encoding/json writes map keys in sorted order; HTML characters stay literal
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(input); err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	return hashParts(identifierFromPurchaser, strings.TrimSuffix(buf.String(), "\n")), nil
}

// ResultHash returns the hex sha256 of the purchaser identifier and the job result
func ResultHash(identifierFromPurchaser, result string) string {
	return hashParts(identifierFromPurchaser, result)
}

func hashParts(identifier, payload string) string {
	sum := sha256.Sum256([]byte(identifier + ";" + payload))
	return hex.EncodeToString(sum[:])
}
