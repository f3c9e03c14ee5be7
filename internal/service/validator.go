package service

import (
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"math"
	"sort"
	"strconv"
	"strings"
)

// referenceSets holds the lower-cased reference lists of one validation run.
type referenceSets struct {
	units     map[string]bool
	hsn       map[string]bool
	subGroups map[string]bool
	countries map[string]bool
	ref       models.ReferenceData
}

func newReferenceSets(ref models.ReferenceData) referenceSets {
	return referenceSets{
		units:     lowerSet(ref.Units),
		hsn:       lowerSet(ref.HSNGroups),
		subGroups: lowerSet(ref.SubGroups),
		countries: lowerSet(ref.Countries()),
		ref:       ref,
	}
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalize(v)] = true
	}
	return set
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate evaluates every row against the rule table of its master type. Row i of the input
// maps to Rows[i] of the result. It has no side effects.
func Validate(rows []models.Row, table *rules.Table, group models.Group, ref models.ReferenceData) models.ValidationResult {
	sets := newReferenceSets(ref)
	persisted := persistedKeys(table, ref.ExistingRows)
	seen := make(map[string]bool, len(rows))
	required := table.RequiredFor(group)

	result := models.ValidationResult{
		Rows:         make([]models.RowValidation, len(rows)),
		ColumnIssues: []models.ColumnIssue{},
	}
	issues := make(map[string]map[models.Status]int)

	for i, row := range rows {
		var cells []models.CellValidation

		if key := naturalKey(table, row); key != "" {
			dup := seen[key]
			if ids, ok := persisted[key]; ok && !ids[row.ID()] {
				dup = true
			}
			seen[key] = true
			if dup {
				for _, k := range table.NaturalKey {
					cells = append(cells, cell(table, k, models.StatusDuplicate,
						"duplicate of another row with the same key"))
				}
			}
		}

		for _, k := range required {
			if row.IsBlank(k) {
				cells = append(cells, cell(table, k, models.StatusMissingData, "required value is missing"))
			}
		}

		cells = append(cells, mismatchCells(table, row, sets)...)
		cells = append(cells, invalidCells(table, row)...)

		rv := models.RowValidation{
			RowIndex:        i,
			RowStatus:       models.StatusValid,
			CellValidations: cells,
		}
		if rv.CellValidations == nil {
			rv.CellValidations = []models.CellValidation{}
		}
		classes := make(map[models.Status]bool)
		for _, c := range cells {
			classes[c.Status] = true
			if c.Status.Severity() > rv.RowStatus.Severity() {
				rv.RowStatus = c.Status
			}
			if issues[c.Column] == nil {
				issues[c.Column] = make(map[models.Status]int)
			}
			issues[c.Column][c.Status]++
		}
		result.Rows[i] = rv
		tally(&result.Summary, rv.RowStatus, classes)
	}

	result.Summary.TotalRows = len(rows)
	result.IsValid = result.Summary.ValidRows == len(rows)
	result.ColumnIssues = columnIssues(table, issues)
	return result
}

// naturalKey joins the trimmed, lower-cased natural key parts. Empty when any part is blank.
func naturalKey(table *rules.Table, row models.Row) string {
	parts := make([]string, len(table.NaturalKey))
	for i, k := range table.NaturalKey {
		v := normalize(row.Text(k))
		if v == "" {
			return ""
		}
		if f, ok := table.Field(k); ok && f.Kind == rules.KindNumber {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				v = strconv.FormatFloat(n, 'f', -1, 64)
			}
		}
		parts[i] = v
	}
	return strings.Join(parts, "\x1f")
}

// persistedKeys indexes persisted rows by natural key, keeping their ids so an edited row does
// not collide with its own stored copy.
func persistedKeys(table *rules.Table, existing []models.Row) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(existing))
	for _, row := range existing {
		key := naturalKey(table, row)
		if key == "" {
			continue
		}
		if out[key] == nil {
			out[key] = make(map[string]bool)
		}
		out[key][row.ID()] = true
	}
	return out
}

func mismatchCells(table *rules.Table, row models.Row, sets referenceSets) []models.CellValidation {
	var cells []models.CellValidation
	countryMatched := false
	for _, f := range table.Fields {
		if f.Reference != rules.RefCountry {
			continue
		}
		v := normalize(row.Text(f.Key))
		countryMatched = v != "" && sets.countries[v]
	}

	for _, f := range table.Fields {
		if f.Reference == rules.RefNone || row.IsBlank(f.Key) {
			continue
		}
		v := normalize(row.Text(f.Key))
		var ok bool
		switch f.Reference {
		case rules.RefUnit:
			ok = sets.units[v]
		case rules.RefHSN:
			ok = sets.hsn[v]
		case rules.RefSubGroup:
			ok = sets.subGroups[v]
		case rules.RefCountry:
			ok = sets.countries[v]
		case rules.RefState:
			if !countryMatched {
				continue
			}
			ok = lowerSet(sets.ref.StatesOf(countryOf(table, row)))[v]
		}
		if !ok {
			cells = append(cells, cell(table, f.Key, models.StatusMismatch,
				fmt.Sprintf("%q is not in the %s list", strings.TrimSpace(row.Text(f.Key)), f.Reference)))
		}
	}
	return cells
}

func countryOf(table *rules.Table, row models.Row) string {
	for _, f := range table.Fields {
		if f.Reference == rules.RefCountry {
			return row.Text(f.Key)
		}
	}
	return ""
}

func invalidCells(table *rules.Table, row models.Row) []models.CellValidation {
	var cells []models.CellValidation
	for _, f := range table.Fields {
		text := row.Text(f.Key)
		if strings.ContainsAny(text, `'"`) {
			cells = append(cells, cell(table, f.Key, models.StatusInvalidContent, "quotes are not allowed"))
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		switch {
		case f.Kind == rules.KindBool:
			if !inEnum(f.Enum, trimmed) {
				cells = append(cells, cell(table, f.Key, models.StatusInvalidContent, "must be TRUE or FALSE"))
			}
		case len(f.Enum) > 0:
			if !inEnum(f.Enum, trimmed) {
				cells = append(cells, cell(table, f.Key, models.StatusInvalidContent,
					"must be one of: "+strings.Join(f.Enum, ", ")))
			}
		case f.Kind == rules.KindNumber:
			n, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				cells = append(cells, cell(table, f.Key, models.StatusInvalidContent, "must be a number"))
				continue
			}
			if msg := numberOutOfRange(n); msg != "" {
				cells = append(cells, cell(table, f.Key, models.StatusInvalidContent, msg))
			}
		}
	}
	return cells
}

// numberOutOfRange reports a number the DECIMAL column would round or reject.
func numberOutOfRange(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) >= math.Pow10(rules.NumberPrecision-rules.NumberScale) {
		return "number is too large"
	}
	text := strconv.FormatFloat(n, 'f', -1, 64)
	if dot := strings.IndexByte(text, '.'); dot >= 0 && len(text)-dot-1 > rules.NumberScale {
		return fmt.Sprintf("at most %d decimal places are allowed", rules.NumberScale)
	}
	return ""
}

func inEnum(enum []string, v string) bool {
	for _, e := range enum {
		if strings.EqualFold(e, v) {
			return true
		}
	}
	return false
}

func cell(table *rules.Table, key string, status models.Status, msg string) models.CellValidation {
	column := key
	if f, ok := table.Field(key); ok {
		column = f.Column
	}
	return models.CellValidation{Column: column, Field: key, Status: status, Message: msg}
}

func tally(s *models.Summary, status models.Status, classes map[models.Status]bool) {
	switch status {
	case models.StatusValid:
		s.ValidRows++
	case models.StatusDuplicate:
		s.DuplicateCount++
	case models.StatusMissingData:
		s.MissingDataCount++
	case models.StatusMismatch:
		s.MismatchCount++
	case models.StatusInvalidContent:
		s.InvalidContentCount++
	}
	if classes[models.StatusDuplicate] {
		s.RowsWithDuplicate++
	}
	if classes[models.StatusMissingData] {
		s.RowsWithMissingData++
	}
	if classes[models.StatusMismatch] {
		s.RowsWithMismatch++
	}
	if classes[models.StatusInvalidContent] {
		s.RowsWithInvalidContent++
	}
}

// columnIssues flattens the per-column counters in table column order, most severe first.
func columnIssues(table *rules.Table, issues map[string]map[models.Status]int) []models.ColumnIssue {
	order := make(map[string]int, len(table.Fields))
	for i, f := range table.Fields {
		order[f.Column] = i
	}
	out := make([]models.ColumnIssue, 0, len(issues))
	for column, byStatus := range issues {
		for status, n := range byStatus {
			out = append(out, models.ColumnIssue{Column: column, Status: status, Rows: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order[out[i].Column] != order[out[j].Column] {
			return order[out[i].Column] < order[out[j].Column]
		}
		return out[i].Status.Severity() > out[j].Status.Severity()
	})
	return out
}

// IssueMessages renders column issues as operator-facing lines ("GSM: 2 rows MissingData").
func IssueMessages(result models.ValidationResult) []string {
	msgs := make([]string, 0, len(result.ColumnIssues))
	for _, ci := range result.ColumnIssues {
		unit := "rows"
		if ci.Rows == 1 {
			unit = "row"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %d %s %s", ci.Column, ci.Rows, unit, ci.Status))
	}
	return msgs
}
