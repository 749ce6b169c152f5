// Package models defines the records persisted by the job stores
package models

const (
	// DefaultLimit is the max number of rows that are retrieved per listing call
	DefaultLimit = 50
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit  int        `json:"limit"`            // Number of items to return
	Offset int        `json:"offset"`           // Number of items to skip
	Status *JobStatus `json:"status,omitempty"` // Filter by job status
}

// Normalize applies the default limit and clamps negative values
func (o *ListOptions) Normalize() ListOptions {
	if o == nil {
		return ListOptions{Limit: DefaultLimit}
	}
	out := *o
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
