package jobModel

import "time"

type JobStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"
)

// Job is one queued ingestion run. The document row itself carries the
// user-visible pending/processing/completed/failed state; this tracks the
// queue side only.
type Job struct {
	Id          string    `json:"id"`
	TraceId     string    `json:"trace_id"`
	DocumentID  uint64    `json:"document_id"`
	CreatedTime time.Time `json:"created_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
	Status      JobStatus `json:"status"`
}
