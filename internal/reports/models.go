package reports

import (
	"time"

	"github.com/google/uuid"
)

// SubjectRecord is one graded subject of a report
type SubjectRecord struct {
	Name          string  `json:"name"`
	Average       float64 `json:"average"`
	Coeff         float64 `json:"coeff"`
	WeightedScore float64 `json:"weighted_score"`
}

// ReportRequest holds everything needed to render one academic report
type ReportRequest struct {
	Subjects       []SubjectRecord `json:"subjects"`
	TotalAvg       float64         `json:"total_avg" binding:"gte=0,lte=20"`
	Classification string          `json:"classification"`
	Filename       string          `json:"filename" binding:"required"`
}

// GenerationResult is the outcome of a single generation.
// Message holds the saved path on success and a readable error otherwise.
type GenerationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

// Totals are the summary figures shown in the last table row
type Totals struct {
	Coeff    float64 `json:"coeff"`
	Weighted float64 `json:"weighted"`
}

// ExportFormat is a tabular companion format
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// JobStatus represents the state of an asynchronous generation
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one asynchronous generation requested over HTTP
type Job struct {
	ID          uuid.UUID         `json:"job_id"`
	Filename    string            `json:"filename"`
	Status      JobStatus         `json:"status"`
	Result      *GenerationResult `json:"result,omitempty"`
	ArchiveKey  string            `json:"archive_key,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}
