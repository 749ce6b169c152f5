// Package mock provides a testify mock of the payment gateway
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/celestiaorg/echo-agent/internal/payment"
)

// Gateway is a mock implementation of payment.Gateway
type Gateway struct {
	mock.Mock
}

var _ payment.Gateway = (*Gateway)(nil)

// CreatePayment mocks opening a payment request
func (m *Gateway) CreatePayment(ctx context.Context, req payment.CreateRequest) (*payment.Request, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*payment.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

// CheckStatus mocks polling a payment
func (m *Gateway) CheckStatus(ctx context.Context, paymentID string) payment.Status {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(payment.Status)
}

// MarkComplete mocks submitting a result hash
func (m *Gateway) MarkComplete(ctx context.Context, paymentID, resultHash string) error {
	args := m.Called(ctx, paymentID, resultHash)
	return args.Error(0)
}
