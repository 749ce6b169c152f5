// Package test provides infrastructure and utilities for integration testing of the echo agent.
//
// The test package runs the real agent (HTTP server, job service, event bus,
// payment worker and SQL job store) against a fake payment service, so whole
// purchase flows can be exercised through the public API client.
//
// The package provides:
//
//   - Suite: manages a complete test setup including a sqlite job store,
//     the real API server, a real API client and the fake payment service
//
//   - mocks.PaymentService: a fake of the payment service REST API whose
//     on-chain states are driven by the test
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    s := test.NewSuite(t)
//	    defer s.Cleanup()
//
//	    // Use s.APIClient to make requests
//	    // Use s.Payments to move payments between on-chain states
//	}
package test
