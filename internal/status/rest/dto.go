package rest

import (
	"time"
)

type GetJobResponse struct {
	JobID      string         `json:"job_id"`
	Name       string         `json:"name"`
	Threads    int            `json:"threads"`
	Status     string         `json:"status"`
	Progress   ProgressInfo   `json:"progress"`
	Timestamps TimestampsInfo `json:"timestamps"`
	Links      Links          `json:"links"`
}

type ProgressInfo struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
}

type TimestampsInfo struct {
	Submitted time.Time  `json:"submitted"`
	Completed *time.Time `json:"completed"`
}

type Links struct {
	Self string `json:"self"`
}

type ListJobsResponse struct {
	Jobs       []JobSummary `json:"jobs"`
	Total      int          `json:"total"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
	NextOffset *int         `json:"next_offset,omitempty"`
}

type JobSummary struct {
	JobID       string     `json:"job_id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Stage       string     `json:"stage"`
	Percentage  float64    `json:"percentage"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
