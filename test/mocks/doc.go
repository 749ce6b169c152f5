// Package mocks provides fakes of the external services the agent talks to.
//
// Each fake follows these principles:
//  1. Speaks the same wire protocol as the real service
//  2. Lets tests drive its state through plain methods
//  3. Records what the agent sent so tests can assert on it
//
// Example usage:
//
//	svc := mocks.NewPaymentService("token")
//	defer svc.Close()
//	svc.SetState(paymentID, mocks.StateFundsLocked)
package mocks
