package models

import "strings"

// MasterType identifies one of the master-data tables.
type MasterType string

const (
	MasterItem      MasterType = "item"
	MasterTool      MasterType = "tool"
	MasterLedger    MasterType = "ledger"
	MasterHSN       MasterType = "hsn"
	MasterSparePart MasterType = "sparepart"
)

// ParseMasterType accepts the URL form of a master type ("item", "spare-part", "HSN").
func ParseMasterType(s string) (MasterType, bool) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	switch MasterType(key) {
	case MasterItem, MasterTool, MasterLedger, MasterHSN, MasterSparePart:
		return MasterType(key), true
	}
	return "", false
}

// Group is a named category inside a master type (Item Group "PAPER", Tool Group "PLATES").
type Group struct {
	ID         int64      `db:"id" json:"id"`
	MasterType MasterType `db:"master_type" json:"master_type"`
	Name       string     `db:"name" json:"name"`
}

// ExpectedFilename is the upload filename tied to the group.
func (g Group) ExpectedFilename() string {
	return g.Name + ".xlsx"
}

// ReferenceData holds the master lists a row set is checked against.
type ReferenceData struct {
	Units         []string            `json:"units"`
	HSNGroups     []string            `json:"hsn_groups"`
	SubGroups     []string            `json:"sub_groups"`
	CountryStates map[string][]string `json:"country_states"`
	// Persisted rows of the target group, used for cross-batch duplicate detection.
	ExistingRows []Row `json:"-"`
}

// Countries returns the country names of the country/state list.
func (r ReferenceData) Countries() []string {
	out := make([]string, 0, len(r.CountryStates))
	for c := range r.CountryStates {
		out = append(out, c)
	}
	return out
}

// StatesOf returns the states of a country, matching the country name case-insensitively.
func (r ReferenceData) StatesOf(country string) []string {
	country = strings.TrimSpace(country)
	for c, states := range r.CountryStates {
		if strings.EqualFold(c, country) {
			return states
		}
	}
	return nil
}
