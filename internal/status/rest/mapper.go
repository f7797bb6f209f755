package rest

import (
	"fmt"

	"github.com/nemanja-m/parmr/internal/status"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
)

func recordStatus(record status.Record) string {
	if record.Completed() {
		return StatusCompleted
	}
	return StatusRunning
}

func toGetJobResponse(record status.Record) GetJobResponse {
	state := record.Source.State()
	return GetJobResponse{
		JobID:   record.ID.String(),
		Name:    record.Name,
		Threads: record.Threads,
		Status:  recordStatus(record),
		Progress: ProgressInfo{
			Stage:      state.Stage.String(),
			Percentage: state.Percentage,
		},
		Timestamps: TimestampsInfo{
			Submitted: record.SubmittedAt,
			Completed: record.CompletedAt,
		},
		Links: Links{
			Self: fmt.Sprintf("/api/jobs/%s", record.ID),
		},
	}
}

func toJobSummary(record status.Record) JobSummary {
	state := record.Source.State()
	return JobSummary{
		JobID:       record.ID.String(),
		Name:        record.Name,
		Status:      recordStatus(record),
		Stage:       state.Stage.String(),
		Percentage:  state.Percentage,
		SubmittedAt: record.SubmittedAt,
		CompletedAt: record.CompletedAt,
	}
}
