package models

// Status is the verdict for a row or a cell.
type Status string

const (
	StatusValid          Status = "Valid"
	StatusDuplicate      Status = "Duplicate"
	StatusMissingData    Status = "MissingData"
	StatusMismatch       Status = "Mismatch"
	StatusInvalidContent Status = "InvalidContent"
)

// Severity orders statuses for row-level precedence. Higher wins.
func (s Status) Severity() int {
	switch s {
	case StatusDuplicate:
		return 4
	case StatusMissingData:
		return 3
	case StatusMismatch:
		return 2
	case StatusInvalidContent:
		return 1
	}
	return 0
}

// CellValidation names one failing column of a row.
type CellValidation struct {
	Column  string `json:"column"`
	Field   string `json:"field"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// RowValidation is the verdict for the row at RowIndex of the validated sequence.
type RowValidation struct {
	RowIndex        int              `json:"row_index"`
	RowStatus       Status           `json:"row_status"`
	CellValidations []CellValidation `json:"cell_validations"`
}

// Summary counts rows by their row status. The buckets are exclusive and add up to TotalRows;
// the RowsWith* counters count every row having at least one cell of that class.
type Summary struct {
	TotalRows           int `json:"total_rows"`
	ValidRows           int `json:"valid_rows"`
	DuplicateCount      int `json:"duplicate_count"`
	MissingDataCount    int `json:"missing_data_count"`
	MismatchCount       int `json:"mismatch_count"`
	InvalidContentCount int `json:"invalid_content_count"`

	RowsWithDuplicate      int `json:"rows_with_duplicate"`
	RowsWithMissingData    int `json:"rows_with_missing_data"`
	RowsWithMismatch       int `json:"rows_with_mismatch"`
	RowsWithInvalidContent int `json:"rows_with_invalid_content"`
}

// ColumnIssue aggregates failures of one class on one column.
type ColumnIssue struct {
	Column string `json:"column"`
	Status Status `json:"status"`
	Rows   int    `json:"rows"`
}

// ValidationResult is produced by one validation run over one row set.
type ValidationResult struct {
	Rows         []RowValidation `json:"rows"`
	Summary      Summary         `json:"summary"`
	IsValid      bool            `json:"is_valid"`
	ColumnIssues []ColumnIssue   `json:"column_issues"`
}

// CellStatus returns the status of column for the row at index, StatusValid when clean.
// A cell carrying several classes reports the most severe one.
func (r *ValidationResult) CellStatus(index int, column string) Status {
	if r == nil || index < 0 || index >= len(r.Rows) {
		return StatusValid
	}
	status := StatusValid
	for _, cv := range r.Rows[index].CellValidations {
		if cv.Column == column && cv.Status.Severity() > status.Severity() {
			status = cv.Status
		}
	}
	return status
}
