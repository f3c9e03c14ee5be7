package service

import (
	"bytes"
	"fmt"
	"io"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Fill colours of the validation statuses in exported workbooks.
var statusFills = map[models.Status]string{
	models.StatusDuplicate:      "#FFC7CE",
	models.StatusMissingData:    "#BDD7EE",
	models.StatusMismatch:       "#FFEB9C",
	models.StatusInvalidContent: "#D9C2E9",
}

const summarySheet = "Summary"

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseSpreadsheet checks the upload filename against the group and maps the first sheet onto
// rows of the table. Header row 1, data from row 2; fully blank rows are skipped.
func (s *ExcelService) ParseSpreadsheet(r io.Reader, filename string, table *rules.Table, group models.Group) ([]models.Row, error) {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if !table.FilenameMatches(group, base) {
		return nil, fmt.Errorf("%w: expected %q, got %q", models.ErrFilenameMismatch, group.ExpectedFilename(), base)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParseFailure, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in Excel file", models.ErrParseFailure)
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %v", models.ErrParseFailure, err)
	}
	if len(sheetRows) == 0 {
		return []models.Row{}, nil
	}

	columns := headerColumns(table, sheetRows[0])

	rows := make([]models.Row, 0, len(sheetRows)-1)
	for _, cells := range sheetRows[1:] {
		row := models.Row{}
		for _, col := range columns {
			value := strings.TrimSpace(getCellValue(cells, col.index))
			if value == "" {
				continue
			}
			coerce(row, col.field, value)
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	table.ApplyDerivations(rows, group)
	return rows, nil
}

type headerColumn struct {
	index int
	field rules.Field
}

// headerColumns maps header positions to fields in sheet order. Unknown headers are ignored and
// a field matched by more than one header is read from its leftmost column only.
func headerColumns(table *rules.Table, headers []string) []headerColumn {
	seen := make(map[string]bool)
	columns := make([]headerColumn, 0, len(headers))
	for i, header := range headers {
		field, ok := table.MatchHeader(header)
		if !ok || seen[field.Key] {
			continue
		}
		seen[field.Key] = true
		columns = append(columns, headerColumn{index: i, field: field})
	}
	return columns
}

// coerce stores value under the field's type. Values that do not parse are kept as nil with
// the original string in rawValues.
func coerce(row models.Row, field rules.Field, value string) {
	switch field.Kind {
	case rules.KindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			row[field.Key] = nil
			row.SetRaw(field.Key, value)
			return
		}
		row[field.Key] = n
	case rules.KindBool:
		switch strings.ToUpper(value) {
		case "TRUE":
			row[field.Key] = true
		case "FALSE":
			row[field.Key] = false
		default:
			row[field.Key] = nil
			row.SetRaw(field.Key, value)
		}
	default:
		row[field.Key] = value
	}
}

// Export writes rows to a workbook named after the group, colouring every failing cell by its
// status when a validation result is supplied. A Summary sheet carries the counts.
func (s *ExcelService) Export(rows []models.Row, table *rules.Table, group models.Group, result *models.ValidationResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetNameFor(group)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}

	headers := table.Columns()
	if result != nil {
		headers = append(headers, "RowStatus")
	}
	if err := writeHeader(f, sheetName, headers); err != nil {
		return nil, err
	}

	fills := make(map[models.Status]int, len(statusFills))
	for status, color := range statusFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create style: %w", err)
		}
		fills[status] = style
	}

	for rowIdx, row := range rows {
		excelRow := rowIdx + 2
		for colIdx, field := range table.Fields {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), excelRow)
			if err := f.SetCellValue(sheetName, cell, exportValue(row, field)); err != nil {
				return nil, err
			}
			if result == nil {
				continue
			}
			if style, ok := fills[result.CellStatus(rowIdx, field.Column)]; ok {
				f.SetCellStyle(sheetName, cell, cell, style)
			}
		}
		if result != nil && rowIdx < len(result.Rows) {
			cell := fmt.Sprintf("%s%d", getColumnName(len(table.Fields)), excelRow)
			f.SetCellValue(sheetName, cell, string(result.Rows[rowIdx].RowStatus))
		}
	}

	if result != nil {
		if err := writeSummary(f, result); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.WriteToBuffer()
}

// Template returns a header-only workbook for the group.
func (s *ExcelService) Template(table *rules.Table, group models.Group) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetNameFor(group)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheetName, table.Columns()); err != nil {
		return nil, err
	}

	// Required columns get a bold red header
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	for i, field := range table.Fields {
		if table.IsRequired(group, field.Key) {
			cell := fmt.Sprintf("%s1", getColumnName(i))
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		}
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.WriteToBuffer()
}

func writeHeader(f *excelize.File, sheetName string, headers []string) error {
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 18)
	}
	return nil
}

func writeSummary(f *excelize.File, result *models.ValidationResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := result.Summary
	lines := [][]interface{}{
		{"Total Rows", s.TotalRows},
		{"Valid Rows", s.ValidRows},
		{"Duplicate", s.DuplicateCount},
		{"Missing Data", s.MissingDataCount},
		{"Mismatch", s.MismatchCount},
		{"Invalid Content", s.InvalidContentCount},
	}
	for i, line := range lines {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), line[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), line[1])
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(lines)), summaryStyle)
	f.SetColWidth(summarySheet, "A", "A", 20)
	return nil
}

// exportValue writes numbers as numbers and everything else as the text shown in the grid.
func exportValue(row models.Row, field rules.Field) interface{} {
	if _, hasRaw := row.Raw(field.Key); !hasRaw && field.Kind == rules.KindNumber {
		if n, ok := row.Number(field.Key); ok {
			return n
		}
	}
	return row.Text(field.Key)
}

// sheetNameFor trims the group name to Excel's sheet name limits.
func sheetNameFor(group models.Group) string {
	name := strings.NewReplacer(":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ").Replace(group.Name)
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "Sheet1") || strings.EqualFold(name, summarySheet) {
		name = "Data"
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
