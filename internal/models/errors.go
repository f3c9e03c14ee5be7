package models

import (
	"errors"
	"fmt"
)

var (
	ErrFilenameMismatch     = errors.New("uploaded filename does not match the selected group")
	ErrParseFailure         = errors.New("spreadsheet could not be read")
	ErrNoData               = errors.New("no data found")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrPersistence          = errors.New("database operation failed")
	ErrUnknownMasterType    = errors.New("unknown master type")
	ErrGroupNotFound        = errors.New("group not found")
	ErrFlowNotFound         = errors.New("clear request not found or expired")
	ErrReasonRequired       = errors.New("a reason is required to clear data")
	ErrDuplicateRow         = errors.New("a row with the same key already exists")
	ErrRowNotFound          = errors.New("row not found")
	ErrInvalidTransition    = errors.New("action not allowed at this step")
	ErrJobNotFound          = errors.New("import job not found or expired")
	ErrQueueUnavailable     = errors.New("import queue is not available")
	ErrAdminPassword        = errors.New("admin account needs a password")
)

// ValidationFailedError blocks an import whose rows are not all Valid.
type ValidationFailedError struct {
	Result *ValidationResult
}

func (e *ValidationFailedError) Error() string {
	s := e.Result.Summary
	return fmt.Sprintf("validation failed: %d of %d rows have issues", s.TotalRows-s.ValidRows, s.TotalRows)
}
