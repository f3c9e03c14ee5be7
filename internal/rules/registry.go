package rules

import (
	"fmt"
	"masterdata-web/internal/models"
	"sort"
	"sync"
)

var (
	registry   = make(map[models.MasterType]*Table)
	registryMu sync.RWMutex
)

// Register adds a rule table. Panics on a second table for the same master type.
func Register(t *Table) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[t.Type]; exists {
		panic(fmt.Sprintf("rule table already registered: %s", t.Type))
	}
	registry[t.Type] = t
}

// Get returns the rule table of a master type.
func Get(mt models.MasterType) (*Table, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[mt]
	return t, ok
}

// Lookup resolves the URL form of a master type to its table.
func Lookup(s string) (*Table, error) {
	mt, ok := models.ParseMasterType(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMasterType, s)
	}
	t, ok := Get(mt)
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMasterType, s)
	}
	return t, nil
}

// All returns every registered table sorted by master type.
func All() []*Table {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Table, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
