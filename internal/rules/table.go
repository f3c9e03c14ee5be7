// Package rules holds the per-master-type rule tables the validator, loader and importer are
// parameterised with. Tables register themselves at init time.
package rules

import (
	"masterdata-web/internal/models"
	"strings"
	"unicode"
)

// FieldKind is the value type a field is coerced to.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	}
	return "text"
}

// Numeric columns are stored as DECIMAL(NumberPrecision, NumberScale).
const (
	NumberPrecision = 18
	NumberScale     = 4
)

// Reference names the master list a field value must be found in.
type Reference string

const (
	RefNone     Reference = ""
	RefUnit     Reference = "unit"
	RefHSN      Reference = "hsn"
	RefSubGroup Reference = "subgroup"
	RefCountry  Reference = "country"
	RefState    Reference = "state"
)

// BoolValues is the strict set accepted by boolean fields (case-insensitive).
var BoolValues = []string{"TRUE", "FALSE"}

// Field describes one column of a master table.
type Field struct {
	Key       string    // camelCase row key
	Column    string    // PascalCase header used in the grid, spreadsheets and cell verdicts
	DBColumn  string    // column in the master table
	Kind      FieldKind // coercion target
	Reference Reference // master list binding, RefNone when free
	Enum      []string  // strict value set; booleans use BoolValues
}

// DeriveFunc recomputes derived fields of a row in place.
type DeriveFunc func(row models.Row, group models.Group)

// Table is the rule table of one master type.
type Table struct {
	Type  models.MasterType
	Label string

	TableName       string // persisted rows
	IDColumn        string
	GroupTable      string // groups of this master type
	GroupIDColumn   string // group id column in both tables
	GroupNameColumn string

	Fields     []Field
	NaturalKey []string // field keys, implicitly scoped to the group

	Required      []string            // required in every group
	GroupRequired map[string][]string // extra required fields by upper-cased group name

	// Upload filename comparison ignores case when set.
	CaseInsensitiveFilename bool

	Derive DeriveFunc
}

// Field returns the field with the given row key.
func (t *Table) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns the PascalCase headers in table order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Column
	}
	return cols
}

// RequiredFor returns the field keys required for rows of the given group.
func (t *Table) RequiredFor(group models.Group) []string {
	extra := t.GroupRequired[strings.ToUpper(strings.TrimSpace(group.Name))]
	out := make([]string, 0, len(t.Required)+len(extra))
	seen := make(map[string]bool, len(t.Required)+len(extra))
	for _, k := range append(append([]string{}, t.Required...), extra...) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// IsRequired reports whether key is required in the group.
func (t *Table) IsRequired(group models.Group, key string) bool {
	for _, k := range t.RequiredFor(group) {
		if k == key {
			return true
		}
	}
	return false
}

// MatchHeader maps a spreadsheet header onto a field. The header is tried as-is, as its
// camelCase form and as the PascalCase column name.
func (t *Table) MatchHeader(header string) (Field, bool) {
	h := strings.TrimSpace(header)
	if h == "" {
		return Field{}, false
	}
	camel := CamelCase(h)
	for _, f := range t.Fields {
		if f.Key == h || strings.EqualFold(f.Key, camel) || strings.EqualFold(f.Column, h) {
			return f, true
		}
	}
	return Field{}, false
}

// FilenameMatches checks an upload's base filename against the group's expected name.
func (t *Table) FilenameMatches(group models.Group, filename string) bool {
	expected := group.ExpectedFilename()
	if t.CaseInsensitiveFilename {
		return strings.EqualFold(filename, expected)
	}
	return filename == expected
}

// ApplyDerivations recomputes derived fields of every row.
func (t *Table) ApplyDerivations(rows []models.Row, group models.Group) {
	if t.Derive == nil {
		return
	}
	for _, row := range rows {
		t.Derive(row, group)
	}
}

// CamelCase turns "Item Name", "item_name" or "ItemName" into "itemName".
func CamelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	})
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for i, w := range words {
		runes := []rune(w)
		if i == 0 {
			if isUpperWord(runes) {
				b.WriteString(strings.ToLower(w))
				continue
			}
			runes[0] = unicode.ToLower(runes[0])
			b.WriteString(string(runes))
			continue
		}
		if isUpperWord(runes) {
			runes = []rune(strings.ToLower(w))
		}
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// isUpperWord reports whether a multi-letter word is all caps ("ITEM", "GSM").
func isUpperWord(runes []rune) bool {
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 1
}
