package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
	// JobStatusField is the database field name for the job status
	JobStatusField = "status"
)

// JobStatus represents the current state of a job in the system
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusAwaitingPayment indicates the job waits for the purchaser to lock funds
	JobStatusAwaitingPayment
	// JobStatusPending indicates the job was accepted without payment and is about to run
	JobStatusPending
	// JobStatusCompleted indicates the job has finished successfully
	JobStatusCompleted
	// JobStatusFailed indicates the job has failed to complete
	JobStatusFailed
)

var jobStatusNames = []string{
	"unknown",
	"awaiting_payment",
	"pending",
	"completed",
	"failed",
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}

	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if s < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// IsTerminal reports whether no further transition may leave this status
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// PaymentStatus mirrors what the payment service last reported for a job
type PaymentStatus string

// Payment status constants
const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	// PaymentStatusBypassed marks jobs started through the direct, payment-free path
	PaymentStatusBypassed PaymentStatus = "bypassed"
	PaymentStatusUnknown  PaymentStatus = "unknown"
)

// Job is one unit of requested text work, tracked from creation to completion or failure
type Job struct {
	ID            string            `json:"job_id" gorm:"primaryKey;size:64"`
	RequesterID   string            `json:"requester_id" gorm:"not null;index"`
	InputData     datatypes.JSONMap `json:"input_data"`
	Status        JobStatus         `json:"status" gorm:"index"`
	PaymentStatus PaymentStatus     `json:"payment_status,omitempty" gorm:"size:32"`
	PaymentID     string            `json:"payment_id,omitempty" gorm:"index"`
	InputHash     string            `json:"input_hash,omitempty" gorm:"size:64"`
	Result        string            `json:"result,omitempty" gorm:"type:text"`
	Error         string            `json:"error,omitempty" gorm:"type:text"`

	// Deadlines announced by the payment service, kept as returned (epoch milliseconds)
	PayByTime                 string `json:"pay_by_time,omitempty"`
	SubmitResultTime          string `json:"submit_result_time,omitempty"`
	UnlockTime                string `json:"unlock_time,omitempty"`
	ExternalDisputeUnlockTime string `json:"external_dispute_unlock_time,omitempty"`

	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a copy of the job that shares no mutable state with the original
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.InputData != nil {
		c.InputData = datatypes.JSONMap(cloneMap(j.InputData))
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = cloneValue(val[i])
		}
		return out
	default:
		return val
	}
}
