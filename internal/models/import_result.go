package models

import "time"

// ImportResult summarises one persistence attempt.
type ImportResult struct {
	Success       bool      `json:"success"`
	TotalRows     int       `json:"total_rows"`
	ImportedRows  int       `json:"imported_rows"`
	DuplicateRows int       `json:"duplicate_rows"`
	ErrorRows     int       `json:"error_rows"`
	ErrorMessages []string  `json:"error_messages"`
	ImportTime    time.Time `json:"import_time"`
}

// ImportJob is the payload of an asynchronous import and the key of its stored result.
type ImportJob struct {
	JobID      string     `json:"job_id"`
	MasterType MasterType `json:"master_type"`
	GroupID    int64      `json:"group_id"`
	Rows       []Row      `json:"rows"`
	Actor      string     `json:"actor"`
}

// ImportJobStatus is what the polling endpoint returns for an asynchronous import.
type ImportJobStatus struct {
	JobID      string            `json:"job_id"`
	Status     string            `json:"status"` // queued, completed, failed
	Result     *ImportResult     `json:"result,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Error      string            `json:"error,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
