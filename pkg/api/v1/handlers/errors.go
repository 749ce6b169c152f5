// Package handlers provides HTTP request handling
package handlers

// Request error messages
const (
	ErrMsgInvalidReqBody      = "Invalid request body"
	ErrMsgInvalidInputData    = "input_data must be an object or a list of key/value pairs"
	ErrMsgJobIDRequired       = "job_id is required"
	ErrMsgJobNotFound         = "Job not found"
	ErrMsgInvalidStatusFilter = "Invalid status filter"
	ErrMsgNegativePagination  = "Page must be a positive number from 1"
)

// Server error messages
const (
	ErrMsgInternal       = "Internal server error"
	ErrMsgGateway        = "Payment service unavailable. Please try again later or contact administrator."
	ErrMsgNotConfigured  = "Server configuration error"
	ErrMsgJobListFailed  = "Failed to list jobs"
	ErrMsgJobCountFailed = "Failed to count jobs"
)
